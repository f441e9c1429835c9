// Package stream builds state machines out of trigger streams and holders.
//
// A trigger stream is anything that can be subscribed to. Holders from the
// state package are streams that replay their current value; a Source is a
// stream of discrete events that does not.
package stream

import (
	"sync"
	"sync/atomic"
)

// Stream delivers values to subscribers until the returned func is called.
type Stream[T any] interface {
	Subscribe(fn func(T)) func()
}

// Sink receives values pushed by a combinator.
type Sink[T any] interface {
	Push(value T)
}

// Sampler is a one-shot read of current state.
type Sampler[T any] interface {
	Get() T
}

// Updater applies a read-modify-write atomically.
type Updater[T any] interface {
	Update(fn func(T) (T, bool))
}

// Func adapts a subscribe function into a Stream.
type Func[T any] func(fn func(T)) func()

// Subscribe calls f.
func (f Func[T]) Subscribe(fn func(T)) func() {
	if f == nil || fn == nil {
		return func() {}
	}
	return f(fn)
}

// SinkFunc adapts a function into a Sink.
type SinkFunc[T any] func(T)

// Push calls f.
func (f SinkFunc[T]) Push(value T) {
	if f != nil {
		f(value)
	}
}

// SamplerFunc adapts a function into a Sampler.
type SamplerFunc[T any] func() T

// Get calls f.
func (f SamplerFunc[T]) Get() T {
	if f == nil {
		var zero T
		return zero
	}
	return f()
}

type listener[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// Source emits discrete events to its listeners in subscription order.
// Emits issued during delivery are queued and delivered afterwards.
type Source[T any] struct {
	mu        sync.Mutex
	listeners []*listener[T]
	pending   []T
	emitting  bool
}

// NewSource creates a source with no listeners.
func NewSource[T any]() *Source[T] {
	return &Source[T]{}
}

// Emit delivers value to every listener.
func (s *Source[T]) Emit(value T) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, value)
	if s.emitting {
		s.mu.Unlock()
		return
	}
	s.emitting = true
	s.mu.Unlock()

	finished := false
	defer func() {
		if !finished {
			s.mu.Lock()
			s.emitting = false
			s.mu.Unlock()
		}
	}()
	for {
		s.mu.Lock()
		if len(s.pending) == 0 {
			s.pending = nil
			s.emitting = false
			s.mu.Unlock()
			finished = true
			return
		}
		next := s.pending[0]
		s.pending = s.pending[1:]
		listeners := s.listeners
		s.mu.Unlock()

		for _, l := range listeners {
			if l.active.Load() {
				l.fn(next)
			}
		}
	}
}

// Subscribe registers fn for future events.
func (s *Source[T]) Subscribe(fn func(T)) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	l := &listener[T]{fn: fn}
	l.active.Store(true)
	s.mu.Lock()
	listeners := make([]*listener[T], len(s.listeners), len(s.listeners)+1)
	copy(listeners, s.listeners)
	s.listeners = append(listeners, l)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.active.Store(false)
			s.mu.Lock()
			listeners := make([]*listener[T], 0, len(s.listeners))
			for _, existing := range s.listeners {
				if existing != l {
					listeners = append(listeners, existing)
				}
			}
			s.listeners = listeners
			s.mu.Unlock()
		})
	}
}

// Len reports the number of listeners.
func (s *Source[T]) Len() int {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}
