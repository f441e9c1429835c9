package stream

// Map transforms every value of s.
func Map[A, B any](s Stream[A], fn func(A) B) Stream[B] {
	return Func[B](func(next func(B)) func() {
		if s == nil || fn == nil {
			return func() {}
		}
		return s.Subscribe(func(a A) {
			next(fn(a))
		})
	})
}

// Filter forwards the values of s that satisfy keep.
func Filter[T any](s Stream[T], keep func(T) bool) Stream[T] {
	return Func[T](func(next func(T)) func() {
		if s == nil || keep == nil {
			return func() {}
		}
		return s.Subscribe(func(v T) {
			if keep(v) {
				next(v)
			}
		})
	})
}

// FilterMap transforms values of s, dropping those fn declines.
func FilterMap[A, B any](s Stream[A], fn func(A) (B, bool)) Stream[B] {
	return Func[B](func(next func(B)) func() {
		if s == nil || fn == nil {
			return func() {}
		}
		return s.Subscribe(func(a A) {
			if b, ok := fn(a); ok {
				next(b)
			}
		})
	})
}

// Skip drops the first n values delivered to each subscriber.
func Skip[T any](s Stream[T], n int) Stream[T] {
	return Func[T](func(next func(T)) func() {
		if s == nil {
			return func() {}
		}
		seen := 0
		return s.Subscribe(func(v T) {
			if seen < n {
				seen++
				return
			}
			next(v)
		})
	})
}

// Changes drops the value a holder replays on subscribe.
func Changes[T any](s Stream[T]) Stream[T] {
	return Skip(s, 1)
}

// Change is a pair of consecutive values.
type Change[T any] struct {
	Prev T
	Next T
}

// Pairwise emits each value together with the one before it, starting with
// the second value delivered.
func Pairwise[T any](s Stream[T]) Stream[Change[T]] {
	return Func[Change[T]](func(next func(Change[T])) func() {
		if s == nil {
			return func() {}
		}
		var prev T
		has := false
		return s.Subscribe(func(v T) {
			if !has {
				prev, has = v, true
				return
			}
			change := Change[T]{Prev: prev, Next: v}
			prev = v
			next(change)
		})
	})
}
