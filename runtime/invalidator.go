package runtime

import "sync/atomic"

// Invalidator coalesces render requests into a single pending InvalidateMsg.
type Invalidator struct {
	post    PostFunc
	pending atomic.Bool
}

// NewInvalidator creates an invalidator wired to a post function.
func NewInvalidator(post PostFunc) *Invalidator {
	return &Invalidator{post: post}
}

// Invalidate requests a render pass. Requests made while one is pending are
// folded into it.
func (i *Invalidator) Invalidate() {
	if i == nil || i.post == nil {
		return
	}
	if !i.pending.CompareAndSwap(false, true) {
		return
	}
	if !i.post(InvalidateMsg{}) {
		i.pending.Store(false)
	}
}

// Schedule runs fn in place and requests a render pass. It lets view
// bindings mark the screen dirty after every delivery.
func (i *Invalidator) Schedule(fn func()) {
	if fn == nil {
		return
	}
	fn()
	i.Invalidate()
}

// Pending reports whether a render request is outstanding.
func (i *Invalidator) Pending() bool {
	return i != nil && i.pending.Load()
}

func (i *Invalidator) reset() {
	if i == nil {
		return
	}
	i.pending.Store(false)
}
