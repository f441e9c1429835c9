package termview

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/dereference/cache"
	"github.com/odvcencio/dereference/stream"
)

// CacheScreen shows every cached key with its state and the entry currently
// selected by the filter. It is the cache.View of the cache machine and its
// cache.Events.
//
// Like ListScreen it must be driven from a single goroutine.
type CacheScreen struct {
	requests *stream.Source[string]

	entries cache.Map
	keys    []string
	current cache.Entry
	input   []rune
	cursor  int
	offset  int
	height  int
}

// NewCacheScreen creates an empty cache screen.
func NewCacheScreen() *CacheScreen {
	return &CacheScreen{requests: stream.NewSource[string]()}
}

// FilterChanges implements cache.Events.
func (c *CacheScreen) FilterChanges() stream.Stream[string] {
	return c.requests
}

// UpdateCache implements cache.View.
func (c *CacheScreen) UpdateCache(m cache.Map) {
	c.entries = m
	c.keys = c.keys[:0]
	for k := range m {
		c.keys = append(c.keys, k)
	}
	sort.Strings(c.keys)
	c.cursor, c.offset = scroll(c.cursor, c.offset, len(c.keys), c.height)
}

// UpdateCurrent implements cache.View.
func (c *CacheScreen) UpdateCurrent(entry cache.Entry) {
	c.current = entry
}

// Input returns the key being typed.
func (c *CacheScreen) Input() string {
	return string(c.input)
}

// HandleKey maps a key press to a filter change and reports whether it was
// consumed. Typed runes build a key; enter requests it, or the key under the
// cursor when nothing was typed.
func (c *CacheScreen) HandleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyUp:
		return c.move(-1)
	case tcell.KeyDown:
		return c.move(1)
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(c.input) == 0 {
			return false
		}
		c.input = c.input[:len(c.input)-1]
		return true
	case tcell.KeyEsc:
		if len(c.input) == 0 {
			return false
		}
		c.input = c.input[:0]
		return true
	case tcell.KeyEnter:
		return c.request()
	case tcell.KeyRune:
		if r == ' ' {
			return false
		}
		c.input = append(c.input, r)
		return true
	}
	return false
}

func (c *CacheScreen) move(delta int) bool {
	if len(c.keys) == 0 {
		return false
	}
	c.cursor, c.offset = scroll(c.cursor+delta, c.offset, len(c.keys), c.height)
	return true
}

func (c *CacheScreen) request() bool {
	key := strings.TrimSpace(string(c.input))
	c.input = c.input[:0]
	if key == "" && c.cursor < len(c.keys) {
		key = c.keys[c.cursor]
	}
	if key == "" {
		return false
	}
	c.requests.Emit(key)
	return true
}

// Draw renders the screen into bounds: the input line, the current entry,
// then one row per cached key.
func (c *CacheScreen) Draw(screen tcell.Screen, bounds Rect) {
	if screen == nil || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}
	fill(screen, bounds, styleDefault)
	drawText(screen, bounds.X, bounds.Y, bounds.Width, "KEY> "+string(c.input), styleHeader)
	if bounds.Height < 2 {
		return
	}
	if c.current != nil {
		text, style := describe(c.current)
		drawText(screen, bounds.X, bounds.Y+1, bounds.Width, "current "+c.current.Key()+": "+text, style)
	}

	rows := Rect{X: bounds.X, Y: bounds.Y + 2, Width: bounds.Width, Height: bounds.Height - 2}
	c.height = rows.Height
	c.cursor, c.offset = scroll(c.cursor, c.offset, len(c.keys), rows.Height)
	for i := 0; i < rows.Height; i++ {
		index := c.offset + i
		if index >= len(c.keys) {
			break
		}
		k := c.keys[index]
		text, style := describe(c.entries.Lookup(k))
		if index == c.cursor {
			style = styleCursor
		}
		row := rows.Row(i)
		drawText(screen, row.X, row.Y, row.Width, fmt.Sprintf("%-8s %s", k, text), style)
	}
}

func describe(entry cache.Entry) (string, tcell.Style) {
	switch e := entry.(type) {
	case cache.Available:
		text := e.Name
		if len(e.Payload) > 0 {
			text += " (" + strings.Join(e.Payload, ", ") + ")"
		}
		return text, styleAvailable
	case cache.Unavailable:
		switch r := e.Reason.(type) {
		case cache.ServerError:
			return "error: " + r.Message, styleMarked
		case cache.Invalid:
			return "invalid", styleMarked
		default:
			return "not requested", styleMuted
		}
	default:
		return "", styleMuted
	}
}
