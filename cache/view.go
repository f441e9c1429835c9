package cache

import (
	"github.com/odvcencio/dereference/state"
	"github.com/odvcencio/dereference/stream"
)

// View receives cache state for rendering.
type View interface {
	UpdateCache(m Map)
	UpdateCurrent(entry Entry)
}

// Events exposes the key requests of a cache screen.
type Events interface {
	FilterChanges() stream.Stream[string]
}

// Selected projects the entry for the key currently in filter.
func Selected(cache state.Observable[Map], filter state.Observable[string]) *state.Computed[Entry] {
	return state.NewComputed(func() Entry {
		return cache.Get().Lookup(filter.Get())
	}, cache, filter)
}

// ConnectFilter forwards requested keys from events into filter.
func ConnectFilter(events Events, filter stream.Sink[string]) func() {
	if events == nil || filter == nil {
		return func() {}
	}
	return events.FilterChanges().Subscribe(filter.Push)
}

// Bind pushes the cache and the currently selected entry into view.
// Deliveries go through scheduler when it is non-nil.
func Bind(view View, cache state.Observable[Map], filter state.Observable[string], scheduler state.Scheduler) *state.Subscriptions {
	subs := state.NewSubscriptions(scheduler)
	if view == nil || cache == nil || filter == nil {
		return subs
	}
	current := Selected(cache, filter)
	subs.Add(current.Stop)
	state.Observe[Map](subs, cache, view.UpdateCache)
	state.Observe[Entry](subs, current, view.UpdateCurrent)
	return subs
}
