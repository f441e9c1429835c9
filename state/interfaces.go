package state

// Readable exposes read-only reactive state.
type Readable[T any] interface {
	Get() T
	Subscribe(fn func(T)) func()
}

// Writable exposes read/write reactive state.
type Writable[T any] interface {
	Readable[T]
	Push(value T)
	Update(fn func(T) (T, bool))
}

// Subscribable emits untyped change notifications.
type Subscribable interface {
	OnChange(fn func()) func()
}

type schedulable[T any] interface {
	SubscribeWithScheduler(scheduler Scheduler, fn func(T)) func()
}

// Observable is a readable that also reports untyped changes, which is what
// a Computed needs from its dependencies.
type Observable[T any] interface {
	Readable[T]
	Subscribable
}
