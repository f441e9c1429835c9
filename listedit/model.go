package listedit

import "sort"

// EditMode is either Normal or Delete.
type EditMode interface {
	isEditMode()
}

// Normal is the default mode: clicks on the list are ignored.
type Normal struct{}

func (Normal) isEditMode() {}

// Delete is the edit mode entered by long-clicking TargetID.
type Delete struct {
	TargetID string
}

func (Delete) isEditMode() {}

// IsDelete reports whether mode is a Delete mode.
func IsDelete(mode EditMode) bool {
	_, ok := mode.(Delete)
	return ok
}

// Click is a click on the list row at Index showing ID.
type Click struct {
	Index int
	ID    string
}

// Selection is an immutable set of element ids. The zero value is empty.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection creates a selection holding ids.
func NewSelection(ids ...string) Selection {
	if len(ids) == 0 {
		return Selection{}
	}
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return Selection{ids: set}
}

// Has reports whether id is selected.
func (s Selection) Has(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s.ids)
}

// Toggle returns a copy of s with id removed if present, added otherwise.
func (s Selection) Toggle(id string) Selection {
	set := make(map[string]struct{}, len(s.ids)+1)
	for existing := range s.ids {
		set[existing] = struct{}{}
	}
	if _, ok := set[id]; ok {
		delete(set, id)
	} else {
		set[id] = struct{}{}
	}
	return Selection{ids: set}
}

// Sorted returns the selected ids in lexical order.
func (s Selection) Sorted() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Remove returns elements without the selected ids, preserving order.
func Remove(elements []string, selected Selection) []string {
	out := make([]string, 0, len(elements))
	for _, id := range elements {
		if !selected.Has(id) {
			out = append(out, id)
		}
	}
	return out
}
