package runtime

import "testing"

func TestInvalidator_PostsInvalidate(t *testing.T) {
	posted := 0
	invalidator := NewInvalidator(func(msg Message) bool {
		if _, ok := msg.(InvalidateMsg); ok {
			posted++
			return true
		}
		return false
	})

	invalidator.Invalidate()
	invalidator.Invalidate()
	if posted != 1 {
		t.Fatalf("expected 1 invalidate post, got %d", posted)
	}
	if !invalidator.Pending() {
		t.Fatalf("expected request to be pending")
	}

	invalidator.reset()
	invalidator.Invalidate()
	if posted != 2 {
		t.Fatalf("expected 2 invalidate posts after reset, got %d", posted)
	}
}

func TestInvalidator_RepostsOnFailedSend(t *testing.T) {
	attempts := 0
	invalidator := NewInvalidator(func(msg Message) bool {
		attempts++
		return false
	})

	invalidator.Invalidate()
	invalidator.Invalidate()
	if attempts != 2 {
		t.Fatalf("expected 2 post attempts, got %d", attempts)
	}
}

func TestInvalidator_Schedule(t *testing.T) {
	posted := 0
	calls := 0
	invalidator := NewInvalidator(func(msg Message) bool {
		posted++
		return true
	})

	invalidator.Schedule(func() { calls++ })
	invalidator.Schedule(func() { calls++ })
	if calls != 2 {
		t.Fatalf("expected schedule to run callbacks, got %d", calls)
	}
	if posted != 1 {
		t.Fatalf("expected coalesced invalidate post, got %d", posted)
	}
}

func TestInvalidator_Nil(t *testing.T) {
	var invalidator *Invalidator
	invalidator.Invalidate()
	if invalidator.Pending() {
		t.Fatalf("expected nil invalidator to report nothing pending")
	}
}
