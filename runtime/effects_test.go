package runtime

import (
	"context"
	"testing"
	"time"
)

func TestAfter_Immediate(t *testing.T) {
	calls := 0
	effect := After(0, InvalidateMsg{})
	effect.Run(context.Background(), func(Message) bool {
		calls++
		return true
	})
	if calls != 1 {
		t.Fatalf("expected immediate post, got %d", calls)
	}
}

func TestAfter_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	After(time.Hour, InvalidateMsg{}).Run(ctx, func(Message) bool {
		calls++
		return true
	})
	if calls != 0 {
		t.Fatalf("expected no post after cancel, got %d", calls)
	}
}

func TestEvery_Invalid(t *testing.T) {
	calls := 0
	effect := Every(0, func(time.Time) Message { return InvalidateMsg{} })
	effect.Run(context.Background(), func(Message) bool {
		calls++
		return true
	})
	if calls != 0 {
		t.Fatalf("expected no posts for invalid interval, got %d", calls)
	}

	calls = 0
	effect = Every(10*time.Millisecond, nil)
	effect.Run(context.Background(), func(Message) bool {
		calls++
		return true
	})
	if calls != 0 {
		t.Fatalf("expected no posts for nil callback, got %d", calls)
	}
}

func TestEvery_PostsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	Every(time.Millisecond, func(time.Time) Message { return TickMsg{} }).Run(ctx, func(Message) bool {
		calls++
		if calls == 3 {
			cancel()
		}
		return true
	})
	if calls < 3 {
		t.Fatalf("expected at least 3 posts before cancel, got %d", calls)
	}
}

func TestTask_Nil(t *testing.T) {
	if Task(nil).Run != nil {
		t.Fatalf("expected nil task to have no Run")
	}
}
