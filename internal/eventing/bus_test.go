package eventing

import (
	"context"
	"errors"
	"testing"
)

type testEvent struct {
	RunID string
}

func TestInMemoryBus_PublishDelivers(t *testing.T) {
	bus := NewInMemoryBus()
	var seen []string
	bus.Subscribe(EventTypeOf[testEvent](), func(ctx context.Context, event any) error {
		evt, ok := event.(testEvent)
		if !ok {
			return ErrInvalidEventType
		}
		seen = append(seen, evt.RunID)
		return nil
	})

	if err := bus.Publish(context.Background(), testEvent{RunID: "run-1"}); err != nil {
		t.Fatalf("publish error: %v", err)
	}
	if len(seen) != 1 || seen[0] != "run-1" {
		t.Fatalf("expected delivery of run-1, got %v", seen)
	}
}

func TestInMemoryBus_NilEvent(t *testing.T) {
	bus := NewInMemoryBus()
	if err := bus.Publish(context.Background(), nil); !errors.Is(err, ErrNilEvent) {
		t.Fatalf("expected ErrNilEvent, got %v", err)
	}
}

func TestInMemoryBus_HandlerErrorReported(t *testing.T) {
	bus := NewInMemoryBus()
	wantErr := errors.New("boom")
	calls := 0
	bus.Subscribe(EventTypeOf[testEvent](), func(ctx context.Context, event any) error {
		calls++
		return wantErr
	})
	bus.Subscribe(EventTypeOf[testEvent](), func(ctx context.Context, event any) error {
		calls++
		return nil
	})

	err := bus.Publish(context.Background(), testEvent{RunID: "run-2"})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected first handler error, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected both handlers called, got %d", calls)
	}
}
