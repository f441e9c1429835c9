package stream

import (
	"sync"
	"sync/atomic"
)

// SampleCombine samples src once per trigger event, combines the sample
// with the event and pushes the result into dst. A combine that declines
// pushes nothing.
func SampleCombine[E, S, R any](trigger Stream[E], src Sampler[S], dst Sink[R], combine func(S, E) (R, bool)) func() {
	if trigger == nil || src == nil || dst == nil || combine == nil {
		return func() {}
	}
	return trigger.Subscribe(func(event E) {
		if next, ok := combine(src.Get(), event); ok {
			dst.Push(next)
		}
	})
}

// Replace is SampleCombine for a holder that is both sampled and written.
// The sample and the write run as one Update, so a trigger can never
// overwrite a push that landed between them.
func Replace[E, S any](trigger Stream[E], holder Updater[S], combine func(S, E) (S, bool)) func() {
	if trigger == nil || holder == nil || combine == nil {
		return func() {}
	}
	return trigger.Subscribe(func(event E) {
		holder.Update(func(current S) (S, bool) {
			return combine(current, event)
		})
	})
}

// FlatMap derives zero or one follow-up value per trigger event and pushes
// it into dst when derive calls emit. emit may be called later from another
// goroutine; follow-ups are pushed in the order they resolve, not the order
// of their triggers. Only the first emit per event counts, and emits after
// cancellation are dropped.
func FlatMap[E, R any](trigger Stream[E], dst Sink[R], derive func(event E, emit func(R))) func() {
	if trigger == nil || dst == nil || derive == nil {
		return func() {}
	}
	var cancelled atomic.Bool
	unsub := trigger.Subscribe(func(event E) {
		var once sync.Once
		derive(event, func(value R) {
			once.Do(func() {
				if !cancelled.Load() {
					dst.Push(value)
				}
			})
		})
	})
	return func() {
		cancelled.Store(true)
		unsub()
	}
}
