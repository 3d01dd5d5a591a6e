package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis stores notifications keyed by destination with a TTL, so multiple
// server replicas can serve the answer for a request any of them processed.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis creates a redis-backed sink. A zero ttl defaults to one hour.
func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	if ttl == 0 {
		ttl = time.Hour
	}
	return &Redis{client: client, ttl: ttl}
}

func key(destination string) string {
	return "parley:notifications:" + destination
}

// Send appends the message to the destination's list and refreshes its TTL.
func (r *Redis) Send(ctx context.Context, destination, message string) error {
	pipe := r.client.TxPipeline()
	pipe.RPush(ctx, key(destination), message)
	pipe.Expire(ctx, key(destination), r.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis notify %s: %w", destination, err)
	}
	return nil
}

// Fetch returns all messages stored for a destination, in delivery order.
func (r *Redis) Fetch(ctx context.Context, destination string) ([]string, error) {
	messages, err := r.client.LRange(ctx, key(destination), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis fetch %s: %w", destination, err)
	}
	return messages, nil
}

// Clear drops all messages stored for a destination.
func (r *Redis) Clear(ctx context.Context, destination string) error {
	return r.client.Del(ctx, key(destination)).Err()
}
