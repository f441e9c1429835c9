// Package observability carries structured events out of the state machines.
// Machines never log directly; they emit events to an Observer, and the
// composition root decides where those go.
package observability

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Level represents event severity. Values follow OTel SeverityNumber ranges.
type Level int

const (
	LevelVerbose Level = 5  // maps to slog.LevelDebug
	LevelInfo    Level = 9  // maps to slog.LevelInfo
	LevelWarning Level = 13 // maps to slog.LevelWarn
	LevelError   Level = 17 // maps to slog.LevelError
)

// String returns the severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	default:
		return "ERROR"
	}
}

// SlogLevel maps this level to the corresponding slog.Level.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// ParseSlogLevel reads a level name as used in config files. Unknown names
// fall back to info.
func ParseSlogLevel(name string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug", "verbose":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EventType identifies the kind of event.
type EventType string

const (
	EventListAdd          EventType = "list.add"
	EventListEditEnter    EventType = "list.edit.enter"
	EventListEditExit     EventType = "list.edit.exit"
	EventListDeleteCommit EventType = "list.delete.commit"

	EventCacheHit           EventType = "cache.hit"
	EventCacheFetchStart    EventType = "cache.fetch.start"
	EventCacheFetchDedup    EventType = "cache.fetch.dedup"
	EventCacheFetchComplete EventType = "cache.fetch.complete"
	EventCacheFetchFailed   EventType = "cache.fetch.failed"
	EventCacheFetchInvalid  EventType = "cache.fetch.invalid"
	EventCacheFetchDropped  EventType = "cache.fetch.dropped"

	EventRPCFetchServed EventType = "rpc.fetch.served"
	EventRPCFetchFailed EventType = "rpc.fetch.failed"
)

// Event is an observability event emitted by a state machine.
type Event struct {
	Type      EventType
	Level     Level
	Timestamp time.Time
	Source    string
	Data      map[string]any
}

// Observer receives events.
type Observer interface {
	OnEvent(ctx context.Context, event Event)
}

// Emit stamps and forwards an event to obs. A nil observer drops it.
func Emit(ctx context.Context, obs Observer, source string, typ EventType, level Level, data map[string]any) {
	if obs == nil {
		return
	}
	obs.OnEvent(ctx, Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}
