// Package bus drives a single logical request to completion: one external
// command plus every event it triggers, pumped through a FIFO work queue.
package bus

import (
	"context"
	"fmt"

	"github.com/nidhogg/parley/internal/domain"
	"go.uber.org/zap"
)

// CommandHandler executes a command and returns the events it produced, in
// emission order. A command error is a hard failure for the whole request.
type CommandHandler func(ctx context.Context, cmd domain.Command) ([]domain.Event, error)

// EventHandler consumes one event. Failures are isolated per handler;
// notifications are best-effort fan-out.
type EventHandler func(ctx context.Context, ev domain.Event) error

// Bus dispatches commands to their single handler and events to zero-or-more
// handlers until the work queue drains.
type Bus struct {
	commands map[domain.Kind]CommandHandler
	events   map[domain.EventKind][]EventHandler
	logger   *zap.Logger
}

// New creates an empty bus.
func New(logger *zap.Logger) *Bus {
	return &Bus{
		commands: make(map[domain.Kind]CommandHandler),
		events:   make(map[domain.EventKind][]EventHandler),
		logger:   logger,
	}
}

// HandleCommand registers the single handler for a command kind.
func (b *Bus) HandleCommand(kind domain.Kind, h CommandHandler) {
	b.commands[kind] = h
}

// HandleEvent appends a handler for an event kind.
func (b *Bus) HandleEvent(kind domain.EventKind, h EventHandler) {
	b.events[kind] = append(b.events[kind], h)
}

// Handle accepts one Command or Event as the entry point and processes it and
// everything it triggers. Events produced by a command handler are appended
// to the queue in emission order, so a Response is always delivered before
// its Evaluation.
func (b *Bus) Handle(ctx context.Context, msg domain.Message) error {
	queue := []domain.Message{msg}

	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		switch m := head.(type) {
		case domain.Event:
			b.handleEvent(ctx, m)
		case domain.Command:
			produced, err := b.handleCommand(ctx, m)
			if err != nil {
				return err
			}
			for _, ev := range produced {
				queue = append(queue, ev)
			}
		default:
			return fmt.Errorf("message %T is neither a command nor an event", head)
		}
	}
	return nil
}

func (b *Bus) handleCommand(ctx context.Context, cmd domain.Command) ([]domain.Event, error) {
	handler, ok := b.commands[cmd.Kind()]
	if !ok {
		return nil, fmt.Errorf("no handler registered for command %q", cmd.Kind())
	}

	b.logger.Debug("handling command",
		zap.String("kind", string(cmd.Kind())),
		zap.String("q_id", cmd.CorrelationID()))

	events, err := handler(ctx, cmd)
	if err != nil {
		b.logger.Error("command handler failed",
			zap.String("kind", string(cmd.Kind())),
			zap.String("q_id", cmd.CorrelationID()),
			zap.Error(err))
		return nil, err
	}
	return events, nil
}

func (b *Bus) handleEvent(ctx context.Context, ev domain.Event) {
	for _, handler := range b.events[ev.EventKind()] {
		b.logger.Debug("handling event",
			zap.String("kind", string(ev.EventKind())),
			zap.String("q_id", ev.CorrelationID()))

		if err := handler(ctx, ev); err != nil {
			b.logger.Error("event handler failed",
				zap.String("kind", string(ev.EventKind())),
				zap.String("q_id", ev.CorrelationID()),
				zap.Error(err))
		}
	}
}
