// Package listedit implements the select/delete/add workflow of a list
// screen on top of three holders: the elements, the selection and the
// edit mode.
package listedit

import "github.com/odvcencio/dereference/state"

// State groups the holders a list screen is wired against. The composition
// root owns them; machines and views only keep references.
type State struct {
	Elements *state.Holder[[]string]
	Selected *state.Holder[Selection]
	EditMode *state.Holder[EditMode]
}

// NewState creates holders seeded with elements, an empty selection and
// Normal mode.
func NewState(elements ...string) *State {
	return &State{
		Elements: state.NewHolder(append([]string{}, elements...)),
		Selected: state.NewHolder(Selection{}),
		EditMode: state.NewHolder[EditMode](Normal{}),
	}
}
