// Package termview renders the list and cache screens on a tcell screen and
// turns key presses into the triggers the state machines consume.
package termview

import (
	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

// Rect is a screen region in cells.
type Rect struct {
	X, Y          int
	Width, Height int
}

// Row returns the one-line rect at offset i inside r.
func (r Rect) Row(i int) Rect {
	return Rect{X: r.X, Y: r.Y + i, Width: r.Width, Height: 1}
}

var (
	styleDefault   = tcell.StyleDefault
	styleCursor    = tcell.StyleDefault.Reverse(true)
	styleHeader    = tcell.StyleDefault.Bold(true)
	styleMarked    = tcell.StyleDefault.Foreground(tcell.ColorRed)
	styleMuted     = tcell.StyleDefault.Dim(true)
	styleAvailable = tcell.StyleDefault.Foreground(tcell.ColorGreen)
)

// drawText writes s on row y starting at x, clipped to width cells.
// Wide runes take two cells.
func drawText(screen tcell.Screen, x, y, width int, s string, style tcell.Style) {
	s = truncate(s, width)
	for _, r := range s {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		screen.SetContent(x, y, r, nil, style)
		x += w
	}
}

// fill clears bounds with spaces.
func fill(screen tcell.Screen, bounds Rect, style tcell.Style) {
	for y := bounds.Y; y < bounds.Y+bounds.Height; y++ {
		for x := bounds.X; x < bounds.X+bounds.Width; x++ {
			screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

// truncate shortens s to fit within maxWidth cells, marking the cut with "...".
func truncate(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	if runewidth.StringWidth(s) <= maxWidth {
		return s
	}
	return runewidth.Truncate(s, maxWidth, "...")
}

// scroll keeps cursor inside a window of height rows starting at offset and
// returns the adjusted cursor and offset.
func scroll(cursor, offset, count, height int) (int, int) {
	if count <= 0 {
		return 0, 0
	}
	cursor = max(0, min(cursor, count-1))
	if cursor < offset {
		offset = cursor
	}
	if height > 0 && cursor >= offset+height {
		offset = cursor - height + 1
	}
	return cursor, max(0, offset)
}
