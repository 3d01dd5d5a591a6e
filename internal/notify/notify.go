// Package notify delivers pipeline events to their destinations. A
// destination is the request's correlation id for request-scoped sinks
// (memory, redis) or a channel id for chat sinks (slack, discord).
package notify

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Notifier sends one message to a destination. Implementations must be safe
// for concurrent use and must not panic; the bus treats delivery as
// best-effort fan-out.
type Notifier interface {
	Send(ctx context.Context, destination, message string) error
}

// Log writes every notification to the structured log. Used as the default
// sink for the CLI and as a delivery audit trail.
type Log struct {
	logger *zap.Logger
}

// NewLog creates a log sink.
func NewLog(logger *zap.Logger) *Log {
	return &Log{logger: logger}
}

// Send logs the message.
func (l *Log) Send(_ context.Context, destination, message string) error {
	l.logger.Info("notification",
		zap.String("destination", destination),
		zap.String("message", message))
	return nil
}

// Memory collects messages per destination in process memory. The HTTP
// entrypoint uses it to hand responses back to waiting requests; tests use
// it to observe delivery.
type Memory struct {
	mu   sync.Mutex
	sent map[string][]string
}

// NewMemory creates an in-process sink.
func NewMemory() *Memory {
	return &Memory{sent: make(map[string][]string)}
}

// Send records the message under its destination.
func (m *Memory) Send(_ context.Context, destination, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent[destination] = append(m.sent[destination], message)
	return nil
}

// Fetch returns all messages recorded for a destination, in delivery order.
func (m *Memory) Fetch(destination string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.sent[destination]))
	copy(out, m.sent[destination])
	return out
}

// Clear drops all messages recorded for a destination.
func (m *Memory) Clear(destination string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sent, destination)
}

// Fanout delivers to every wrapped sink. A failing sink is logged and skipped
// so one broken channel never blocks the others.
type Fanout struct {
	sinks  []Notifier
	logger *zap.Logger
}

// NewFanout creates a best-effort multi-sink.
func NewFanout(logger *zap.Logger, sinks ...Notifier) *Fanout {
	return &Fanout{sinks: sinks, logger: logger}
}

// Send forwards the message to every sink.
func (f *Fanout) Send(ctx context.Context, destination, message string) error {
	for _, sink := range f.sinks {
		if err := sink.Send(ctx, destination, message); err != nil {
			f.logger.Warn("notification sink failed",
				zap.String("destination", destination),
				zap.Error(err))
		}
	}
	return nil
}
