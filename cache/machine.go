package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/odvcencio/dereference/observability"
	"github.com/odvcencio/dereference/state"
	"github.com/odvcencio/dereference/stream"
)

const eventSource = "cache"

// Fetcher resolves a key at the external boundary. Implementations may
// return an Unavailable entry instead of an error to report a failure.
type Fetcher interface {
	Fetch(ctx context.Context, key string) (Entry, error)
}

// FetchFunc adapts a function into a Fetcher.
type FetchFunc func(ctx context.Context, key string) (Entry, error)

// Fetch calls f.
func (f FetchFunc) Fetch(ctx context.Context, key string) (Entry, error) {
	return f(ctx, key)
}

type options struct {
	runner       func(func())
	scheduler    state.Scheduler
	timeout      time.Duration
	initialFetch bool
	observer     observability.Observer
}

// Option configures a Machine.
type Option func(*options)

// WithRunner sets how a fetch is started. The default runs each fetch on
// its own goroutine; tests pass a runner that calls fn inline.
func WithRunner(run func(fn func())) Option {
	return func(o *options) {
		if run != nil {
			o.runner = run
		}
	}
}

// WithScheduler sets where fetch completions are delivered, typically the
// screen's event loop. Completions run directly when unset.
func WithScheduler(scheduler state.Scheduler) Option {
	return func(o *options) {
		o.scheduler = scheduler
	}
}

// WithTimeout bounds each fetch.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

// WithInitialFetch also resolves the key the filter holds when the machine
// starts. By default only later filter changes are resolved.
func WithInitialFetch() Option {
	return func(o *options) {
		o.initialFetch = true
	}
}

// WithObserver reports hits, fetches and their outcomes to obs.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Machine keeps a cache holder in sync with a key filter holder.
//
// On every filter change the cache is sampled. Available keys are left
// alone and the fetcher is not called; any other key is fetched and the
// classified result merged into the cache. Fetch failures never stop the
// machine.
//
// Only one fetch per key is in flight at a time; a filter change to a key
// that is already being fetched is dropped.
type Machine struct {
	fetcher Fetcher
	cache   state.Writable[Map]
	filter  stream.Stream[string]
	opts    options

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inflight map[string]bool
	unsub    func()
	started  bool
	closed   bool
}

// New creates a Machine. It does nothing until Start is called.
func New(fetcher Fetcher, cache state.Writable[Map], filter stream.Stream[string], opts ...Option) *Machine {
	o := options{
		runner: func(fn func()) { go fn() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		fetcher:  fetcher,
		cache:    cache,
		filter:   filter,
		opts:     o,
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]bool),
	}
}

// HandleFilterChange starts a Machine and returns its Close.
func HandleFilterChange(fetcher Fetcher, cache state.Writable[Map], filter stream.Stream[string], opts ...Option) func() {
	m := New(fetcher, cache, filter, opts...)
	m.Start()
	return m.Close
}

// Start subscribes to the filter. Calling it again has no effect.
func (m *Machine) Start() {
	if m == nil || m.fetcher == nil || m.cache == nil || m.filter == nil {
		return
	}
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	keys := m.filter
	if !m.opts.initialFetch {
		keys = stream.Changes(keys)
	}
	sink := stream.SinkFunc[Entry](m.merge)
	unsub := stream.FlatMap[string, Entry](keys, sink, m.resolve)

	m.mu.Lock()
	m.unsub = unsub
	m.mu.Unlock()
}

// Close releases the filter subscription and cancels in-flight fetches.
// Fetches that complete afterwards are dropped.
func (m *Machine) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	unsub := m.unsub
	m.unsub = nil
	m.inflight = make(map[string]bool)
	m.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	m.cancel()
}

// Pending reports how many fetches are in flight.
func (m *Machine) Pending() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inflight)
}

func (m *Machine) resolve(key string, emit func(Entry)) {
	if IsAvailable(m.cache.Get().Lookup(key)) {
		m.event(observability.EventCacheHit, observability.LevelVerbose, map[string]any{"key": key})
		return
	}

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	if m.inflight[key] {
		m.mu.Unlock()
		m.event(observability.EventCacheFetchDedup, observability.LevelVerbose, map[string]any{"key": key})
		return
	}
	m.inflight[key] = true
	m.mu.Unlock()

	requestID := uuid.Must(uuid.NewV7()).String()
	m.event(observability.EventCacheFetchStart, observability.LevelInfo, map[string]any{
		"key":        key,
		"request_id": requestID,
	})

	m.opts.runner(func() {
		started := time.Now()
		entry, err := m.fetch(key, requestID)
		result := Classify(key, entry, err)
		m.report(key, requestID, time.Since(started), result)

		deliver := func() {
			m.mu.Lock()
			closed := m.closed
			delete(m.inflight, key)
			m.mu.Unlock()
			if closed {
				m.event(observability.EventCacheFetchDropped, observability.LevelVerbose, map[string]any{"key": key})
				return
			}
			emit(result)
		}
		if m.opts.scheduler != nil {
			m.opts.scheduler.Schedule(deliver)
			return
		}
		deliver()
	})
}

func (m *Machine) fetch(key, requestID string) (entry Entry, err error) {
	defer func() {
		if r := recover(); r != nil {
			entry, err = nil, fmt.Errorf("fetch %q panicked: %v", key, r)
		}
	}()
	ctx := WithRequestID(m.ctx, requestID)
	if m.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.opts.timeout)
		defer cancel()
	}
	return m.fetcher.Fetch(ctx, key)
}

func (m *Machine) merge(entry Entry) {
	m.cache.Update(func(current Map) (Map, bool) {
		return current.With(entry.Key(), entry), true
	})
}

func (m *Machine) report(key, requestID string, elapsed time.Duration, result Entry) {
	data := map[string]any{
		"key":        key,
		"request_id": requestID,
		"elapsed":    elapsed,
	}
	switch e := result.(type) {
	case Available:
		m.event(observability.EventCacheFetchComplete, observability.LevelInfo, data)
	case Unavailable:
		switch r := e.Reason.(type) {
		case ServerError:
			data["error"] = r.Message
			m.event(observability.EventCacheFetchFailed, observability.LevelWarning, data)
		case Invalid, NotRequested:
			m.event(observability.EventCacheFetchInvalid, observability.LevelWarning, data)
		}
	}
}

func (m *Machine) event(typ observability.EventType, level observability.Level, data map[string]any) {
	observability.Emit(m.ctx, m.opts.observer, eventSource, typ, level, data)
}
