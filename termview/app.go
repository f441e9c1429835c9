package termview

import (
	"context"

	"github.com/gdamore/tcell/v2"

	"github.com/odvcencio/dereference/runtime"
)

// Pane identifies which screen receives key presses.
type Pane int

const (
	PaneList Pane = iota
	PaneCache
)

const splitWidth = 60

// App lays the list and cache screens out on one terminal and routes input
// to the focused one.
type App struct {
	screen tcell.Screen
	list   *ListScreen
	cache  *CacheScreen
	focus  Pane
}

// NewApp creates an App drawing on screen. The screen must already be
// initialized.
func NewApp(screen tcell.Screen, list *ListScreen, cache *CacheScreen) *App {
	if list == nil {
		list = NewListScreen()
	}
	if cache == nil {
		cache = NewCacheScreen()
	}
	return &App{screen: screen, list: list, cache: cache}
}

// List returns the list screen.
func (a *App) List() *ListScreen { return a.list }

// Cache returns the cache screen.
func (a *App) Cache() *CacheScreen { return a.cache }

// Focus returns the pane receiving key presses.
func (a *App) Focus() Pane { return a.focus }

// HandleKey routes a key press and reports whether it was consumed and
// whether the user asked to quit.
func (a *App) HandleKey(key tcell.Key, r rune, mod tcell.ModMask) (handled, quit bool) {
	switch key {
	case tcell.KeyCtrlC:
		return true, true
	case tcell.KeyTab, tcell.KeyBacktab:
		if a.focus == PaneList {
			a.focus = PaneCache
		} else {
			a.focus = PaneList
		}
		return true, false
	}
	if a.focus == PaneCache {
		return a.cache.HandleKey(key, r), false
	}
	if key == tcell.KeyRune && r == 'q' {
		return true, true
	}
	return a.list.HandleKey(key, r), false
}

// HandleEvent processes a terminal event and reports whether a redraw is
// needed and whether the user asked to quit.
func (a *App) HandleEvent(ev tcell.Event) (redraw, quit bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		return a.HandleKey(e.Key(), e.Rune(), e.Modifiers())
	case *tcell.EventResize:
		if a.screen != nil {
			a.screen.Sync()
		}
		return true, false
	}
	return false, false
}

// Update is a runtime.UpdateFunc that feeds terminal events to the App.
func (a *App) Update(loop *runtime.Loop, msg runtime.Message) bool {
	if m, ok := msg.(runtime.EventMsg); ok {
		redraw, quit := a.HandleEvent(m.Event)
		if quit {
			loop.Quit()
		}
		return redraw
	}
	return runtime.DefaultUpdate(loop, msg)
}

// Input returns an effect that forwards terminal events to the loop. It
// ends when the screen is finalized or ctx is done.
func (a *App) Input() runtime.Effect {
	return runtime.Effect{Run: func(ctx context.Context, post runtime.PostFunc) {
		if a.screen == nil {
			return
		}
		for ctx.Err() == nil {
			ev := a.screen.PollEvent()
			if ev == nil {
				return
			}
			post(runtime.EventMsg{Event: ev})
		}
	}}
}

// Draw renders both panes side by side, or only the focused one on narrow
// terminals, followed by a help line.
func (a *App) Draw() {
	if a.screen == nil {
		return
	}
	w, h := a.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	body := Rect{Width: w, Height: h - 1}
	if w >= splitWidth {
		left := Rect{Width: w / 2, Height: body.Height}
		right := Rect{X: w/2 + 1, Width: w - w/2 - 1, Height: body.Height}
		a.list.Draw(a.screen, left)
		a.cache.Draw(a.screen, right)
		for y := 0; y < body.Height; y++ {
			a.screen.SetContent(w/2, y, tcell.RuneVLine, nil, styleMuted)
		}
	} else if a.focus == PaneList {
		a.list.Draw(a.screen, body)
	} else {
		a.cache.Draw(a.screen, body)
	}
	help := "tab: switch  a: add  l: long-click  d: delete  enter: select  q: quit"
	if a.focus == PaneCache {
		help = "tab: switch  type a key + enter: request  up/down + enter: refetch  ctrl-c: quit"
	}
	fill(a.screen, Rect{Y: h - 1, Width: w, Height: 1}, styleMuted)
	drawText(a.screen, 0, h-1, w, help, styleMuted)
	a.screen.Show()
}
