package notify

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
)

func TestMemorySinkFetchAndClear(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	m.Send(ctx, "q1", "first")
	m.Send(ctx, "q1", "second")
	m.Send(ctx, "q2", "other")

	got := m.Fetch("q1")
	if len(got) != 2 || got[0] != "first" || got[1] != "second" {
		t.Fatalf("fetch = %v", got)
	}

	m.Clear("q1")
	if len(m.Fetch("q1")) != 0 {
		t.Fatal("clear should drop messages")
	}
	if len(m.Fetch("q2")) != 1 {
		t.Fatal("clear should not touch other destinations")
	}
}

type failingSink struct{ calls int }

func (f *failingSink) Send(context.Context, string, string) error {
	f.calls++
	return errors.New("down")
}

func TestFanoutContinuesPastFailingSink(t *testing.T) {
	failing := &failingSink{}
	memory := NewMemory()
	f := NewFanout(zap.NewNop(), failing, memory)

	if err := f.Send(context.Background(), "q1", "msg"); err != nil {
		t.Fatalf("fanout should not propagate sink errors: %v", err)
	}
	if failing.calls != 1 {
		t.Fatal("failing sink should be attempted")
	}
	if got := memory.Fetch("q1"); len(got) != 1 || got[0] != "msg" {
		t.Fatalf("second sink missed delivery: %v", got)
	}
}

func TestLogSink(t *testing.T) {
	l := NewLog(zap.NewNop())
	if err := l.Send(context.Background(), "q1", "msg"); err != nil {
		t.Fatalf("log sink: %v", err)
	}
}
