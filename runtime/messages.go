package runtime

import (
	"time"

	"github.com/gdamore/tcell/v2"
)

// Message is anything flowing into a Loop.
// Messages come from terminal input, timers, or background goroutines.
type Message interface {
	isMessage()
}

// EventMsg carries a terminal input event.
type EventMsg struct {
	Event tcell.Event
}

func (EventMsg) isMessage() {}

// CallMsg runs Fn on the loop goroutine.
type CallMsg struct {
	Fn func()
}

func (CallMsg) isMessage() {}

// TickMsg is sent on each tick when the loop has a tick rate.
type TickMsg struct {
	Time time.Time
}

func (TickMsg) isMessage() {}

// QueueFlushMsg wakes the loop to run scheduled callbacks.
type QueueFlushMsg struct{}

func (QueueFlushMsg) isMessage() {}

// InvalidateMsg requests a render pass.
type InvalidateMsg struct{}

func (InvalidateMsg) isMessage() {}

// QuitMsg stops the loop.
type QuitMsg struct{}

func (QuitMsg) isMessage() {}
