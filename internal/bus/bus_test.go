package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/nidhogg/parley/internal/domain"
	"go.uber.org/zap"
)

func TestHandleCommandFansOutProducedEvents(t *testing.T) {
	b := New(zap.NewNop())

	response := &domain.Response{Base: domain.Base{Question: "q", QID: "1"}, Response: "a"}
	evaluation := &domain.Evaluation{Base: domain.Base{Question: "q", QID: "1"}, Approved: true}

	b.HandleCommand(domain.KindQuestion, func(ctx context.Context, cmd domain.Command) ([]domain.Event, error) {
		return []domain.Event{response, evaluation}, nil
	})

	var seen []domain.EventKind
	record := func(ctx context.Context, ev domain.Event) error {
		seen = append(seen, ev.EventKind())
		return nil
	}
	b.HandleEvent(domain.EventResponse, record)
	b.HandleEvent(domain.EventEvaluation, record)

	cmd := &domain.Question{Base: domain.Base{Question: "q", QID: "1"}}
	if err := b.Handle(context.Background(), cmd); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(seen) != 2 || seen[0] != domain.EventResponse || seen[1] != domain.EventEvaluation {
		t.Fatalf("event order = %v, want [response evaluation]", seen)
	}
}

func TestHandleCommandErrorPropagates(t *testing.T) {
	b := New(zap.NewNop())
	boom := errors.New("boom")
	b.HandleCommand(domain.KindQuestion, func(ctx context.Context, cmd domain.Command) ([]domain.Event, error) {
		return nil, boom
	})

	err := b.Handle(context.Background(), &domain.Question{Base: domain.Base{Question: "q", QID: "1"}})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestEventHandlerErrorsAreIsolated(t *testing.T) {
	b := New(zap.NewNop())

	calls := 0
	b.HandleEvent(domain.EventResponse, func(ctx context.Context, ev domain.Event) error {
		calls++
		return errors.New("first handler failed")
	})
	b.HandleEvent(domain.EventResponse, func(ctx context.Context, ev domain.Event) error {
		calls++
		return nil
	})

	ev := &domain.Response{Base: domain.Base{Question: "q", QID: "1"}, Response: "a"}
	if err := b.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d, want both handlers to run", calls)
	}
}

func TestHandleUnknownCommandFails(t *testing.T) {
	b := New(zap.NewNop())
	err := b.Handle(context.Background(), &domain.Question{Base: domain.Base{Question: "q", QID: "1"}})
	if err == nil {
		t.Fatal("expected error for unregistered command")
	}
}

func TestEventWithoutHandlersIsANoOp(t *testing.T) {
	b := New(zap.NewNop())
	ev := &domain.Query{Base: domain.Base{Question: "q", QID: "1"}, Response: "SELECT 1"}
	if err := b.Handle(context.Background(), ev); err != nil {
		t.Fatalf("handle: %v", err)
	}
}
