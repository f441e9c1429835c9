// Package state provides the reactive cells that screens read from and
// write back into.
package state

import (
	"sync"
	"sync/atomic"
)

// EqualFunc compares two values for equality.
type EqualFunc[T any] func(a, b T) bool

// EqualComparable compares comparable values with ==.
func EqualComparable[T comparable](a, b T) bool {
	return a == b
}

type subscriber[T any] struct {
	fn        func(T)
	scheduler Scheduler
	active    atomic.Bool
	// ready is set once the subscriber has received its replay; pushes
	// delivered before that are skipped because the replay carries them.
	ready atomic.Bool
}

func (s *subscriber[T]) deliver(value T) {
	if !s.active.Load() {
		return
	}
	if s.scheduler == nil {
		s.fn(value)
		return
	}
	s.scheduler.Schedule(func() {
		if s.active.Load() {
			s.fn(value)
		}
	})
}

type jobKind int

const (
	jobPush jobKind = iota
	jobUpdate
	jobReplay
)

type job[T any] struct {
	kind   jobKind
	value  T
	update func(T) (T, bool)
	sub    *subscriber[T]
}

// Holder owns one current value and broadcasts every replacement to its
// subscribers in subscription order.
//
// Deliveries are serialized: a push issued while another delivery is in
// progress, whether re-entrant from a subscriber or from another goroutine,
// is queued and delivered by the goroutine already delivering once the
// in-progress notification completes. Every subscriber observes pushes in
// the order they were issued.
type Holder[T any] struct {
	mu         sync.Mutex
	value      T
	subs       []*subscriber[T]
	equal      EqualFunc[T]
	pending    []job[T]
	delivering bool
}

// NewHolder creates a holder with an initial value.
func NewHolder[T any](initial T) *Holder[T] {
	return &Holder[T]{value: initial}
}

// SetEqualFunc configures the equality check used to suppress redundant pushes.
func (h *Holder[T]) SetEqualFunc(fn EqualFunc[T]) {
	if h == nil {
		return
	}
	h.mu.Lock()
	h.equal = fn
	h.mu.Unlock()
}

// Get samples the current value without subscribing.
func (h *Holder[T]) Get() T {
	if h == nil {
		var zero T
		return zero
	}
	h.mu.Lock()
	value := h.value
	h.mu.Unlock()
	return value
}

// Push replaces the current value and notifies subscribers.
func (h *Holder[T]) Push(value T) {
	if h == nil {
		return
	}
	h.enqueue(job[T]{kind: jobPush, value: value})
}

// Update replaces the value with fn applied to it. fn runs in the delivery
// queue, so it observes every push issued before it and no push can land
// between its read and its write. Returning false leaves the value alone.
func (h *Holder[T]) Update(fn func(T) (T, bool)) {
	if h == nil || fn == nil {
		return
	}
	h.enqueue(job[T]{kind: jobUpdate, update: fn})
}

// Subscribe registers fn, delivers the current value to it and then every
// later push. The returned func cancels the subscription.
func (h *Holder[T]) Subscribe(fn func(T)) func() {
	return h.SubscribeWithScheduler(nil, fn)
}

// SubscribeWithScheduler is Subscribe with deliveries dispatched through
// scheduler. If scheduler is nil, callbacks run synchronously.
func (h *Holder[T]) SubscribeWithScheduler(scheduler Scheduler, fn func(T)) func() {
	if h == nil || fn == nil {
		return func() {}
	}
	sub := h.add(fn, scheduler)
	h.enqueue(job[T]{kind: jobReplay, sub: sub})
	return h.cancelFunc(sub)
}

// OnChange registers fn for future pushes only.
func (h *Holder[T]) OnChange(fn func()) func() {
	if h == nil || fn == nil {
		return func() {}
	}
	sub := h.add(func(T) { fn() }, nil)
	sub.ready.Store(true)
	return h.cancelFunc(sub)
}

func (h *Holder[T]) add(fn func(T), scheduler Scheduler) *subscriber[T] {
	sub := &subscriber[T]{fn: fn, scheduler: scheduler}
	sub.active.Store(true)
	h.mu.Lock()
	subs := make([]*subscriber[T], len(h.subs), len(h.subs)+1)
	copy(subs, h.subs)
	h.subs = append(subs, sub)
	h.mu.Unlock()
	return sub
}

func (h *Holder[T]) cancelFunc(sub *subscriber[T]) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			sub.active.Store(false)
			h.mu.Lock()
			subs := make([]*subscriber[T], 0, len(h.subs))
			for _, s := range h.subs {
				if s != sub {
					subs = append(subs, s)
				}
			}
			h.subs = subs
			h.mu.Unlock()
		})
	}
}

func (h *Holder[T]) enqueue(j job[T]) {
	h.mu.Lock()
	h.pending = append(h.pending, j)
	if h.delivering {
		h.mu.Unlock()
		return
	}
	h.delivering = true
	h.mu.Unlock()
	h.drain()
}

// drain runs queued jobs until the queue is empty. Only one goroutine drains
// at a time, so value is never written concurrently.
func (h *Holder[T]) drain() {
	finished := false
	defer func() {
		if finished {
			return
		}
		// A subscriber panicked; leave queued jobs for the next push.
		h.mu.Lock()
		h.delivering = false
		h.mu.Unlock()
	}()
	for {
		h.mu.Lock()
		if len(h.pending) == 0 {
			h.pending = nil
			h.delivering = false
			h.mu.Unlock()
			finished = true
			return
		}
		j := h.pending[0]
		h.pending[0] = job[T]{}
		h.pending = h.pending[1:]
		current := h.value
		h.mu.Unlock()

		switch j.kind {
		case jobPush:
			h.set(j.value)
		case jobUpdate:
			if next, ok := j.update(current); ok {
				h.set(next)
			}
		case jobReplay:
			j.sub.ready.Store(true)
			j.sub.deliver(current)
		}
	}
}

func (h *Holder[T]) set(value T) {
	h.mu.Lock()
	if h.equal != nil && h.equal(h.value, value) {
		h.mu.Unlock()
		return
	}
	h.value = value
	subs := h.subs
	h.mu.Unlock()

	for _, sub := range subs {
		if sub.ready.Load() {
			sub.deliver(value)
		}
	}
}
