// Package cache keeps a key-addressed content cache in a holder and fills it
// on demand through an external fetch boundary.
package cache

import "strings"

// Reason explains why an entry is unavailable.
type Reason interface {
	isReason()
}

// NotRequested marks a key that was never fetched. It is not an error.
type NotRequested struct{}

// ServerError records a fetch that failed at the boundary.
type ServerError struct {
	Message string
}

// Invalid records a fetch that returned data failing validation.
type Invalid struct{}

func (NotRequested) isReason() {}
func (ServerError) isReason()  {}
func (Invalid) isReason()      {}

// Entry is either Available or Unavailable.
type Entry interface {
	isEntry()
	Key() string
}

// Available is content resolved for ID.
type Available struct {
	ID      string
	Name    string
	Payload []string
}

// Unavailable is a key without content and the reason why.
type Unavailable struct {
	ID     string
	Reason Reason
}

func (Available) isEntry()   {}
func (Unavailable) isEntry() {}

// Key returns the id the entry belongs to.
func (a Available) Key() string { return a.ID }

// Key returns the id the entry belongs to.
func (u Unavailable) Key() string { return u.ID }

// NotRequestedEntry is the state of every key that has not been fetched.
func NotRequestedEntry(key string) Unavailable {
	return Unavailable{ID: key, Reason: NotRequested{}}
}

// IsAvailable reports whether e holds content.
func IsAvailable(e Entry) bool {
	_, ok := e.(Available)
	return ok
}

// Valid reports whether a is well-formed content for key.
func Valid(key string, a Available) bool {
	return key != "" && a.ID == key && strings.TrimSpace(a.Name) != ""
}

// Classify turns the outcome of a fetch for key into the entry stored under
// key. Failures become ServerError, malformed or mismatched content becomes
// Invalid, and the result is always keyed by key.
func Classify(key string, entry Entry, err error) Entry {
	if err != nil {
		return Unavailable{ID: key, Reason: ServerError{Message: err.Error()}}
	}
	switch e := entry.(type) {
	case Available:
		if Valid(key, e) {
			return e
		}
		return Unavailable{ID: key, Reason: Invalid{}}
	case Unavailable:
		switch r := e.Reason.(type) {
		case ServerError:
			return Unavailable{ID: key, Reason: r}
		case Invalid:
			return Unavailable{ID: key, Reason: r}
		default:
			return Unavailable{ID: key, Reason: Invalid{}}
		}
	default:
		return Unavailable{ID: key, Reason: Invalid{}}
	}
}

// Map is the cache content. Values pushed into a holder are never mutated;
// use With to derive a new Map.
type Map map[string]Entry

// NewMap creates a map with every key NotRequested.
func NewMap(keys ...string) Map {
	m := make(Map, len(keys))
	for _, k := range keys {
		m[k] = NotRequestedEntry(k)
	}
	return m
}

// Lookup returns the entry for key. Absent keys are NotRequested.
func (m Map) Lookup(key string) Entry {
	if e, ok := m[key]; ok && e != nil {
		return e
	}
	return NotRequestedEntry(key)
}

// With returns a copy of m with entry stored under key.
func (m Map) With(key string, entry Entry) Map {
	next := make(Map, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	next[key] = entry
	return next
}
