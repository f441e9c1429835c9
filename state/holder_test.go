package state

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHolder_ReplayOnSubscribe(t *testing.T) {
	h := NewHolder("a")
	h.Push("b")

	var got []string
	unsub := h.Subscribe(func(v string) {
		got = append(got, v)
	})
	if len(got) != 1 || got[0] != "b" {
		t.Fatalf("expected replay of current value b, got %v", got)
	}

	h.Push("c")
	unsub()
	h.Push("d")
	if diff := cmp.Diff([]string{"b", "c"}, got); diff != "" {
		t.Fatalf("unexpected deliveries (-want +got):\n%s", diff)
	}
}

func TestHolder_SubscriptionOrder(t *testing.T) {
	h := NewHolder(0)
	var order []string
	h.Subscribe(func(int) { order = append(order, "first") })
	h.Subscribe(func(int) { order = append(order, "second") })
	h.Subscribe(func(int) { order = append(order, "third") })
	order = nil

	h.Push(1)
	if diff := cmp.Diff([]string{"first", "second", "third"}, order); diff != "" {
		t.Fatalf("unexpected notify order (-want +got):\n%s", diff)
	}
}

func TestHolder_ReentrantPushPreservesOrder(t *testing.T) {
	h := NewHolder(0)
	var first, second []int

	h.Subscribe(func(v int) {
		first = append(first, v)
		if v == 1 {
			h.Push(2)
			h.Push(3)
		}
	})
	h.Subscribe(func(v int) {
		second = append(second, v)
	})

	h.Push(1)
	want := []int{0, 1, 2, 3}
	if diff := cmp.Diff(want, first); diff != "" {
		t.Fatalf("first subscriber (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, second); diff != "" {
		t.Fatalf("second subscriber (-want +got):\n%s", diff)
	}
	if got := h.Get(); got != 3 {
		t.Fatalf("expected current value 3, got %d", got)
	}
}

func TestHolder_ReentrantPushWaitsForNotification(t *testing.T) {
	h := NewHolder(0)
	var seen []int

	h.Subscribe(func(v int) {
		if v == 1 {
			h.Push(2)
			if got := h.Get(); got != 1 {
				t.Fatalf("expected nested push to be deferred, current %d", got)
			}
		}
	})
	h.Subscribe(func(v int) {
		seen = append(seen, v)
	})
	seen = nil

	h.Push(1)
	if diff := cmp.Diff([]int{1, 2}, seen); diff != "" {
		t.Fatalf("later subscriber saw pushes out of order (-want +got):\n%s", diff)
	}
}

func TestHolder_SubscribeDuringDelivery(t *testing.T) {
	h := NewHolder(0)
	var late []int

	h.Subscribe(func(v int) {
		if v == 1 {
			h.Subscribe(func(v int) {
				late = append(late, v)
			})
			h.Push(2)
		}
	})

	h.Push(1)
	if diff := cmp.Diff([]int{1, 2}, late); diff != "" {
		t.Fatalf("late subscriber (-want +got):\n%s", diff)
	}
}

func TestHolder_UpdateIsSerialized(t *testing.T) {
	h := NewHolder(0)
	h.Subscribe(func(v int) {
		if v == 1 {
			h.Update(func(cur int) (int, bool) { return cur + 10, true })
			h.Push(5)
			h.Update(func(cur int) (int, bool) { return cur + 1, true })
		}
	})

	h.Push(1)
	if got := h.Get(); got != 6 {
		t.Fatalf("expected updates to apply in queue order, got %d", got)
	}

	h.Update(func(int) (int, bool) { return 100, false })
	if got := h.Get(); got != 6 {
		t.Fatalf("expected declined update to keep value, got %d", got)
	}
	h.Update(nil)
}

func TestHolder_CancelDropsQueuedDeliveries(t *testing.T) {
	h := NewHolder(0)
	var got []int
	var unsub func()

	h.Subscribe(func(v int) {
		if v == 1 {
			h.Push(2)
			unsub()
		}
	})
	unsub = h.Subscribe(func(v int) {
		got = append(got, v)
	})
	got = nil

	h.Push(1)
	if diff := cmp.Diff([]int(nil), got); diff != "" {
		t.Fatalf("expected no deliveries after cancel (-want +got):\n%s", diff)
	}
	unsub()
}

func TestHolder_OnChangeSkipsReplay(t *testing.T) {
	h := NewHolder(1)
	calls := 0
	unsub := h.OnChange(func() { calls++ })
	if calls != 0 {
		t.Fatalf("expected no replay, got %d calls", calls)
	}
	h.Push(2)
	unsub()
	h.Push(3)
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestHolder_SetEqualFunc(t *testing.T) {
	h := NewHolder(5)
	h.SetEqualFunc(EqualComparable[int])
	calls := 0
	h.OnChange(func() { calls++ })

	h.Push(5)
	h.Push(6)
	h.Push(6)
	if calls != 1 {
		t.Fatalf("expected redundant pushes to be suppressed, got %d calls", calls)
	}
}

func TestHolder_SubscribeWithScheduler(t *testing.T) {
	h := NewHolder(1)
	queue := NewQueue()
	var got []int

	unsub := h.SubscribeWithScheduler(queue, func(v int) {
		got = append(got, v)
	})
	h.Push(2)
	if len(got) != 0 {
		t.Fatalf("expected deliveries to be queued, got %v", got)
	}
	if flushed := queue.Flush(); flushed != 2 {
		t.Fatalf("expected 2 callbacks flushed, got %d", flushed)
	}
	if diff := cmp.Diff([]int{1, 2}, got); diff != "" {
		t.Fatalf("unexpected deliveries (-want +got):\n%s", diff)
	}

	h.Push(3)
	unsub()
	queue.Flush()
	if len(got) != 2 {
		t.Fatalf("expected queued delivery to be dropped after cancel, got %v", got)
	}
}

func TestHolder_PanickingSubscriberDoesNotWedge(t *testing.T) {
	h := NewHolder(0)
	var got []int
	h.Subscribe(func(v int) {
		got = append(got, v)
	})
	unsub := h.Subscribe(func(v int) {
		if v == 1 {
			panic("boom")
		}
	})

	func() {
		defer func() { _ = recover() }()
		h.Push(1)
	}()
	unsub()

	h.Push(2)
	if diff := cmp.Diff([]int{0, 1, 2}, got); diff != "" {
		t.Fatalf("unexpected deliveries (-want +got):\n%s", diff)
	}
}

func TestHolder_ConcurrentPushes(t *testing.T) {
	h := NewHolder(0)
	var mu sync.Mutex
	count := 0
	h.OnChange(func() {
		mu.Lock()
		count++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				h.Update(func(v int) (int, bool) { return v + 1, true })
			}
		}()
	}
	wg.Wait()

	h.Update(func(v int) (int, bool) { return v, true })
	if got := h.Get(); got != 800 {
		t.Fatalf("expected no lost updates, got %d", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if count != 801 {
		t.Fatalf("expected 801 notifications, got %d", count)
	}
}

func TestHolder_Nil(t *testing.T) {
	var h *Holder[int]
	h.Push(1)
	h.Update(func(v int) (int, bool) { return v, true })
	if got := h.Get(); got != 0 {
		t.Fatalf("expected zero value from nil holder, got %d", got)
	}
	h.Subscribe(func(int) {})()
}
