package listedit

import (
	"github.com/odvcencio/dereference/state"
	"github.com/odvcencio/dereference/stream"
)

// View receives state changes for rendering.
type View interface {
	UpdateElements(elements []string)
	UpdateSelected(selected Selection)
	UpdateEditMode(mode EditMode)
}

// Events exposes the user interaction triggers of a list screen.
type Events interface {
	AddClicks() stream.Stream[struct{}]
	LongClicks() stream.Stream[Click]
	DeleteClicks() stream.Stream[struct{}]
	ListClicks() stream.Stream[Click]
}

// Triggers is an Events implementation backed by sources, for views that
// push clicks imperatively.
type Triggers struct {
	Adds        *stream.Source[struct{}]
	LongPresses *stream.Source[Click]
	Deletes     *stream.Source[struct{}]
	Clicks      *stream.Source[Click]
}

// NewTriggers creates a Triggers with fresh sources.
func NewTriggers() *Triggers {
	return &Triggers{
		Adds:        stream.NewSource[struct{}](),
		LongPresses: stream.NewSource[Click](),
		Deletes:     stream.NewSource[struct{}](),
		Clicks:      stream.NewSource[Click](),
	}
}

func (t *Triggers) AddClicks() stream.Stream[struct{}]    { return t.Adds }
func (t *Triggers) LongClicks() stream.Stream[Click]      { return t.LongPresses }
func (t *Triggers) DeleteClicks() stream.Stream[struct{}] { return t.Deletes }
func (t *Triggers) ListClicks() stream.Stream[Click]      { return t.Clicks }

// Bind pushes every state change of st into view. Deliveries go through
// scheduler when it is non-nil.
func Bind(view View, st *State, scheduler state.Scheduler) *state.Subscriptions {
	subs := state.NewSubscriptions(scheduler)
	if view == nil || st == nil {
		return subs
	}
	state.Observe[[]string](subs, st.Elements, view.UpdateElements)
	state.Observe[Selection](subs, st.Selected, view.UpdateSelected)
	state.Observe[EditMode](subs, st.EditMode, view.UpdateEditMode)
	return subs
}
