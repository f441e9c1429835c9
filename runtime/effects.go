package runtime

import (
	"context"
	"time"
)

// PostFunc sends a message into the loop.
// It returns false when the message buffer is full.
type PostFunc func(Message) bool

// Effect runs work in a background goroutine.
// Use the provided context for cancellation and PostFunc to report back.
type Effect struct {
	Run func(ctx context.Context, post PostFunc)
}

// Task wraps fn as an effect that ignores the loop context.
func Task(fn func()) Effect {
	if fn == nil {
		return Effect{}
	}
	return Effect{Run: func(context.Context, PostFunc) { fn() }}
}

// After posts a message after a delay.
func After(delay time.Duration, msg Message) Effect {
	return Effect{
		Run: func(ctx context.Context, post PostFunc) {
			if msg == nil || post == nil {
				return
			}
			if delay <= 0 {
				post(msg)
				return
			}
			timer := time.NewTimer(delay)
			defer timer.Stop()
			select {
			case <-ctx.Done():
			case <-timer.C:
				post(msg)
			}
		},
	}
}

// Every posts messages on a fixed interval until the context ends.
// Returning nil from fn skips posting.
func Every(interval time.Duration, fn func(time.Time) Message) Effect {
	return Effect{
		Run: func(ctx context.Context, post PostFunc) {
			if interval <= 0 || fn == nil || post == nil {
				return
			}
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					if msg := fn(now); msg != nil {
						post(msg)
					}
				}
			}
		},
	}
}
