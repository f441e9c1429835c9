// Package runtime provides the event loop a screen runs on. Trigger
// delivery, holder updates and fetch completions for one screen are funneled
// through a Loop so they are observed in a single goroutine.
package runtime

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/odvcencio/dereference/state"
)

// UpdateFunc handles a message and returns true if a render is needed.
type UpdateFunc func(loop *Loop, msg Message) bool

// LoopConfig configures a Loop.
type LoopConfig struct {
	Update        UpdateFunc
	Render        func()
	MessageBuffer int
	TickRate      time.Duration
	StateQueue    *state.Queue
	FlushPolicy   QueueFlushPolicy
}

// Loop drains messages and scheduled callbacks on one goroutine.
//
// Loop implements state.Scheduler: callbacks handed to Schedule are queued
// and run on the loop goroutine in FIFO order, after the message that woke
// the loop has been handled.
type Loop struct {
	update      UpdateFunc
	render      func()
	messages    chan Message
	tickRate    time.Duration
	queue       *state.Queue
	flushPolicy QueueFlushPolicy
	invalidator *Invalidator

	flushPending atomic.Bool
	running      atomic.Bool
	quit         chan struct{}
	quitOnce     sync.Once
	done         chan struct{}

	taskMu         sync.Mutex
	taskCtx        context.Context
	taskCancel     context.CancelFunc
	pendingEffects []Effect
	tasks          sync.WaitGroup
}

// NewLoop creates a Loop from config.
func NewLoop(cfg LoopConfig) *Loop {
	bufferSize := cfg.MessageBuffer
	if bufferSize <= 0 {
		bufferSize = 128
	}
	queue := cfg.StateQueue
	if queue == nil {
		queue = state.NewQueue()
	}
	update := cfg.Update
	if update == nil {
		update = DefaultUpdate
	}
	loop := &Loop{
		update:      update,
		render:      cfg.Render,
		messages:    make(chan Message, bufferSize),
		tickRate:    cfg.TickRate,
		queue:       queue,
		flushPolicy: cfg.FlushPolicy,
		quit:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	loop.invalidator = NewInvalidator(loop.tryPost)
	return loop
}

// Schedule queues fn to run on the loop goroutine and wakes the loop.
func (l *Loop) Schedule(fn func()) {
	if l == nil || fn == nil {
		return
	}
	l.queue.Schedule(fn)
	if l.flushPending.CompareAndSwap(false, true) {
		if !l.tryPost(QueueFlushMsg{}) {
			l.flushPending.Store(false)
		}
	}
}

// StateQueue returns the queue behind Schedule.
func (l *Loop) StateQueue() *state.Queue {
	if l == nil {
		return nil
	}
	return l.queue
}

// Invalidator returns the loop's render request coalescer. It is also a
// state.Scheduler that marks the screen dirty after each callback.
func (l *Loop) Invalidator() *Invalidator {
	if l == nil {
		return nil
	}
	return l.invalidator
}

// Invalidate requests a render pass.
func (l *Loop) Invalidate() {
	if l == nil {
		return
	}
	l.invalidator.Invalidate()
}

// Post sends a message to the loop, dropping it when the buffer is full.
func (l *Loop) Post(msg Message) {
	_ = l.tryPost(msg)
}

// TryPost sends a message without blocking and reports whether it was queued.
func (l *Loop) TryPost(msg Message) bool {
	return l.tryPost(msg)
}

// Call runs fn on the loop goroutine.
func (l *Loop) Call(fn func()) bool {
	if fn == nil {
		return false
	}
	return l.tryPost(CallMsg{Fn: fn})
}

func (l *Loop) tryPost(msg Message) bool {
	if l == nil || l.messages == nil || msg == nil {
		return false
	}
	select {
	case l.messages <- msg:
		return true
	default:
		return false
	}
}

// Spawn starts an effect under the loop task context.
// If Run has not started, the effect is held until it does.
func (l *Loop) Spawn(effect Effect) {
	if l == nil || effect.Run == nil {
		return
	}
	l.taskMu.Lock()
	if l.taskCtx == nil {
		l.pendingEffects = append(l.pendingEffects, effect)
		l.taskMu.Unlock()
		return
	}
	ctx := l.taskCtx
	l.tasks.Add(1)
	l.taskMu.Unlock()
	go l.runEffect(ctx, effect)
}

// Go runs fn as a background task. Its signature matches cache.WithRunner.
func (l *Loop) Go(fn func()) {
	l.Spawn(Task(fn))
}

// After posts msg after delay.
func (l *Loop) After(delay time.Duration, msg Message) {
	l.Spawn(After(delay, msg))
}

// Every posts the result of fn on every interval.
func (l *Loop) Every(interval time.Duration, fn func(time.Time) Message) {
	l.Spawn(Every(interval, fn))
}

// Quit asks a running loop to return.
func (l *Loop) Quit() {
	if l == nil {
		return
	}
	l.quitOnce.Do(func() { close(l.quit) })
}

// Stop quits the loop, waits for Run to return if it was started and then
// waits for background tasks.
func (l *Loop) Stop() {
	if l == nil {
		return
	}
	l.Quit()
	if l.running.Load() {
		<-l.done
	}
	l.tasks.Wait()
}

// Run drains messages until Quit or context cancellation. Background tasks
// are cancelled when it returns.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrRunning
	}
	defer close(l.done)
	if ctx == nil {
		ctx = context.Background()
	}

	taskCtx, taskCancel := context.WithCancel(ctx)
	defer taskCancel()
	l.taskMu.Lock()
	l.taskCtx = taskCtx
	l.taskCancel = taskCancel
	effects := l.pendingEffects
	l.pendingEffects = nil
	l.tasks.Add(len(effects))
	l.taskMu.Unlock()
	for _, effect := range effects {
		go l.runEffect(taskCtx, effect)
	}

	var ticks <-chan time.Time
	if l.tickRate > 0 {
		ticker := time.NewTicker(l.tickRate)
		defer ticker.Stop()
		ticks = ticker.C
	}

	dirty := true
	for {
		if dirty && l.render != nil {
			l.render()
		}
		dirty = false

		var msg Message
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.quit:
			return nil
		case msg = <-l.messages:
		case now := <-ticks:
			msg = TickMsg{Time: now}
		}

		if _, ok := msg.(QuitMsg); ok {
			return nil
		}
		if l.update(l, msg) {
			dirty = true
		}
		if _, ok := msg.(InvalidateMsg); ok {
			l.invalidator.reset()
		}
		if l.flushQueueIfNeeded(msg) {
			dirty = true
		}
	}
}

// DefaultUpdate runs CallMsg callbacks and renders on InvalidateMsg.
func DefaultUpdate(loop *Loop, msg Message) bool {
	switch m := msg.(type) {
	case CallMsg:
		if m.Fn != nil {
			m.Fn()
		}
		return true
	case InvalidateMsg:
		return true
	default:
		return false
	}
}

func (l *Loop) flushQueueIfNeeded(msg Message) bool {
	if !shouldFlushQueue(l.flushPolicy, msg) {
		return false
	}
	l.flushPending.Store(false)
	return l.queue.Flush() > 0
}

func (l *Loop) runEffect(ctx context.Context, effect Effect) {
	defer l.tasks.Done()
	effect.Run(ctx, l.tryPost)
}
