package termview

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/dereference/listedit"
)

// ListScreen shows the editable list. It is the listedit.View of the list
// machine and, through the embedded Triggers, its listedit.Events.
//
// The view methods, key handling and Draw must all be called from the same
// goroutine, normally a runtime.Loop.
type ListScreen struct {
	*listedit.Triggers

	elements []string
	selected listedit.Selection
	mode     listedit.EditMode
	cursor   int
	offset   int
	height   int
}

// NewListScreen creates an empty list screen.
func NewListScreen() *ListScreen {
	return &ListScreen{
		Triggers: listedit.NewTriggers(),
		mode:     listedit.Normal{},
	}
}

// UpdateElements implements listedit.View.
func (l *ListScreen) UpdateElements(elements []string) {
	l.elements = elements
	l.cursor, l.offset = scroll(l.cursor, l.offset, len(elements), l.height)
}

// UpdateSelected implements listedit.View.
func (l *ListScreen) UpdateSelected(selected listedit.Selection) {
	l.selected = selected
}

// UpdateEditMode implements listedit.View.
func (l *ListScreen) UpdateEditMode(mode listedit.EditMode) {
	if mode == nil {
		mode = listedit.Normal{}
	}
	l.mode = mode
}

// Cursor returns the index of the highlighted row.
func (l *ListScreen) Cursor() int {
	return l.cursor
}

// HandleKey maps a key press to a list trigger and reports whether it was
// consumed.
//
//	a            add an element
//	up/k down/j  move the cursor
//	enter/space  click the row under the cursor
//	l            long-click the row under the cursor
//	d            press delete
func (l *ListScreen) HandleKey(key tcell.Key, r rune) bool {
	switch key {
	case tcell.KeyUp:
		return l.move(-1)
	case tcell.KeyDown:
		return l.move(1)
	case tcell.KeyEnter:
		return l.click(l.Clicks.Emit)
	case tcell.KeyRune:
	default:
		return false
	}
	switch r {
	case 'a':
		l.Adds.Emit(struct{}{})
		return true
	case 'd':
		l.Deletes.Emit(struct{}{})
		return true
	case 'k':
		return l.move(-1)
	case 'j':
		return l.move(1)
	case ' ':
		return l.click(l.Clicks.Emit)
	case 'l':
		return l.click(l.LongPresses.Emit)
	}
	return false
}

func (l *ListScreen) move(delta int) bool {
	if len(l.elements) == 0 {
		return false
	}
	l.cursor, l.offset = scroll(l.cursor+delta, l.offset, len(l.elements), l.height)
	return true
}

func (l *ListScreen) click(emit func(listedit.Click)) bool {
	if l.cursor < 0 || l.cursor >= len(l.elements) {
		return false
	}
	emit(listedit.Click{Index: l.cursor, ID: l.elements[l.cursor]})
	return true
}

// Draw renders the screen into bounds: a mode header, then one row per
// element.
func (l *ListScreen) Draw(screen tcell.Screen, bounds Rect) {
	if screen == nil || bounds.Width <= 0 || bounds.Height <= 0 {
		return
	}
	fill(screen, bounds, styleDefault)
	drawText(screen, bounds.X, bounds.Y, bounds.Width, l.header(), styleHeader)

	rows := Rect{X: bounds.X, Y: bounds.Y + 1, Width: bounds.Width, Height: bounds.Height - 1}
	l.height = rows.Height
	if len(l.elements) == 0 {
		drawText(screen, rows.X, rows.Y, rows.Width, "(empty, press a to add)", styleMuted)
		return
	}
	l.cursor, l.offset = scroll(l.cursor, l.offset, len(l.elements), rows.Height)

	_, deleting := l.mode.(listedit.Delete)
	for i := 0; i < rows.Height; i++ {
		index := l.offset + i
		if index >= len(l.elements) {
			break
		}
		id := l.elements[index]
		style := styleDefault
		marker := "  "
		if deleting {
			marker = "[ ]"
			if l.selected.Has(id) {
				marker = "[x]"
				style = styleMarked
			}
		}
		if index == l.cursor {
			style = styleCursor
		}
		row := rows.Row(i)
		drawText(screen, row.X, row.Y, row.Width, marker+" "+id, style)
	}
}

func (l *ListScreen) header() string {
	switch m := l.mode.(type) {
	case listedit.Delete:
		return fmt.Sprintf("DELETE  target=%s  selected=%d", m.TargetID, l.selected.Len())
	default:
		return fmt.Sprintf("LIST  %d elements", len(l.elements))
	}
}
