package state

import "sync"

// Subscriptions tracks cancel funcs so a screen can release all of them as
// one unit.
type Subscriptions struct {
	mu     sync.Mutex
	unsubs []func()
	sched  Scheduler
}

// NewSubscriptions creates a Subscriptions with a default scheduler.
func NewSubscriptions(scheduler Scheduler) *Subscriptions {
	return &Subscriptions{sched: scheduler}
}

// SetScheduler updates the default scheduler.
func (s *Subscriptions) SetScheduler(scheduler Scheduler) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.sched = scheduler
	s.mu.Unlock()
}

// Scheduler returns the default scheduler.
func (s *Subscriptions) Scheduler() Scheduler {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	scheduler := s.sched
	s.mu.Unlock()
	return scheduler
}

// Add registers a cancel func.
func (s *Subscriptions) Add(unsub func()) {
	if s == nil || unsub == nil {
		return
	}
	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsub)
	s.mu.Unlock()
}

// Merge moves every cancel func tracked by other into s.
func (s *Subscriptions) Merge(other *Subscriptions) {
	if s == nil || other == nil || s == other {
		return
	}
	other.mu.Lock()
	unsubs := other.unsubs
	other.unsubs = nil
	other.mu.Unlock()
	s.mu.Lock()
	s.unsubs = append(s.unsubs, unsubs...)
	s.mu.Unlock()
}

// Len reports how many cancel funcs are tracked.
func (s *Subscriptions) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.unsubs)
}

// Watch registers a change listener and tracks the unsubscribe.
func (s *Subscriptions) Watch(sub Subscribable, fn func()) {
	if s == nil || sub == nil || fn == nil {
		return
	}
	s.Add(sub.OnChange(fn))
}

// Observe subscribes fn to r using the default scheduler of subs and tracks
// the cancel func.
func Observe[T any](subs *Subscriptions, r Readable[T], fn func(T)) {
	if subs == nil || r == nil || fn == nil {
		return
	}
	ObserveWithScheduler(subs, r, subs.Scheduler(), fn)
}

// ObserveWithScheduler subscribes fn to r through scheduler and tracks the
// cancel func. Readables without scheduler support are subscribed directly.
func ObserveWithScheduler[T any](subs *Subscriptions, r Readable[T], scheduler Scheduler, fn func(T)) {
	if subs == nil || r == nil || fn == nil {
		return
	}
	if scheduler != nil {
		if sched, ok := r.(schedulable[T]); ok {
			subs.Add(sched.SubscribeWithScheduler(scheduler, fn))
			return
		}
	}
	subs.Add(r.Subscribe(fn))
}

// Clear cancels all tracked subscriptions.
func (s *Subscriptions) Clear() {
	if s == nil {
		return
	}
	s.mu.Lock()
	unsubs := s.unsubs
	s.unsubs = nil
	s.mu.Unlock()
	for _, unsub := range unsubs {
		if unsub != nil {
			unsub()
		}
	}
}
