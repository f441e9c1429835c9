package listedit

import (
	"context"

	"github.com/oklog/ulid/v2"

	"github.com/odvcencio/dereference/observability"
	"github.com/odvcencio/dereference/state"
	"github.com/odvcencio/dereference/stream"
)

const eventSource = "listedit"

// IDGenerator returns a fresh element id given the current elements.
type IDGenerator func(existing []string) string

// ULIDGenerator returns ids that are unique and sort by creation time.
func ULIDGenerator() IDGenerator {
	return func([]string) string {
		return ulid.Make().String()
	}
}

type options struct {
	newID    IDGenerator
	observer observability.Observer
}

// Option configures the list machine.
type Option func(*options)

// WithIDGenerator overrides how added elements are named.
func WithIDGenerator(gen IDGenerator) Option {
	return func(o *options) {
		if gen != nil {
			o.newID = gen
		}
	}
}

// WithObserver reports machine transitions to obs.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func buildOptions(opts []Option) options {
	o := options{newID: ULIDGenerator()}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

func (o options) emit(typ observability.EventType, data map[string]any) {
	observability.Emit(context.Background(), o.observer, eventSource, typ, observability.LevelInfo, data)
}

// Subscribe wires every list use case to events and st. Clearing the
// returned Subscriptions tears the whole machine down.
func Subscribe(events Events, st *State, opts ...Option) *state.Subscriptions {
	subs := &state.Subscriptions{}
	if events == nil || st == nil {
		return subs
	}
	subs.Add(HandleAdd(st.Elements, events.AddClicks(), opts...))
	subs.Add(HandleEnterEditState(events.LongClicks(), st.EditMode, opts...))
	subs.Add(HandleExitEditState(events.DeleteClicks(), st.EditMode, opts...))
	subs.Add(HandleCommitDelete(st.EditMode, st.Elements, st.Selected, opts...))
	subs.Add(HandleSelectTarget(st.EditMode, st.Selected))
	subs.Add(HandleSelect(st.EditMode, st.Selected, events.ListClicks()))
	return subs
}

// HandleAdd appends a fresh id to elements on every add click.
func HandleAdd(elements state.Writable[[]string], addClicks stream.Stream[struct{}], opts ...Option) func() {
	o := buildOptions(opts)
	return stream.Replace[struct{}, []string](addClicks, elements, func(current []string, _ struct{}) ([]string, bool) {
		id := o.newID(current)
		next := make([]string, 0, len(current)+1)
		next = append(next, current...)
		next = append(next, id)
		o.emit(observability.EventListAdd, map[string]any{"id": id, "count": len(next)})
		return next, true
	})
}

// HandleEnterEditState switches Normal to Delete on a long click. A long
// click while already deleting does not retarget.
func HandleEnterEditState(longClicks stream.Stream[Click], editMode state.Writable[EditMode], opts ...Option) func() {
	o := buildOptions(opts)
	return stream.Replace[Click, EditMode](longClicks, editMode, func(mode EditMode, click Click) (EditMode, bool) {
		switch mode.(type) {
		case Delete:
			return mode, false
		default:
			o.emit(observability.EventListEditEnter, map[string]any{"target": click.ID, "index": click.Index})
			return Delete{TargetID: click.ID}, true
		}
	})
}

// HandleExitEditState switches Delete back to Normal on a delete click.
func HandleExitEditState(deleteClicks stream.Stream[struct{}], editMode state.Writable[EditMode], opts ...Option) func() {
	o := buildOptions(opts)
	return stream.Replace[struct{}, EditMode](deleteClicks, editMode, func(mode EditMode, _ struct{}) (EditMode, bool) {
		switch m := mode.(type) {
		case Delete:
			o.emit(observability.EventListEditExit, map[string]any{"target": m.TargetID})
			return Normal{}, true
		default:
			return mode, false
		}
	})
}

// HandleSelectTarget selects the long-clicked element whenever the mode
// becomes Delete.
func HandleSelectTarget(editMode stream.Stream[EditMode], selected stream.Sink[Selection]) func() {
	return stream.FlatMap[EditMode, Selection](editMode, selected, func(mode EditMode, emit func(Selection)) {
		switch m := mode.(type) {
		case Delete:
			emit(NewSelection(m.TargetID))
		case Normal:
		}
	})
}

// HandleCommitDelete removes the selected elements when the mode goes from
// Delete to Normal, then clears the selection.
func HandleCommitDelete(editMode stream.Stream[EditMode], elements state.Writable[[]string], selected state.Writable[Selection], opts ...Option) func() {
	o := buildOptions(opts)
	commits := stream.FilterMap[stream.Change[EditMode], Selection](stream.Pairwise[EditMode](editMode), func(c stream.Change[EditMode]) (Selection, bool) {
		if !IsDelete(c.Prev) || IsDelete(c.Next) {
			return Selection{}, false
		}
		return selected.Get(), true
	})
	return commits.Subscribe(func(doomed Selection) {
		elements.Update(func(current []string) ([]string, bool) {
			next := Remove(current, doomed)
			o.emit(observability.EventListDeleteCommit, map[string]any{
				"removed": len(current) - len(next),
				"count":   len(next),
			})
			return next, true
		})
		selected.Push(Selection{})
	})
}

// HandleSelect toggles the clicked element in selected while in Delete
// mode. Clicks in Normal mode are ignored.
func HandleSelect(editMode stream.Sampler[EditMode], selected state.Writable[Selection], listClicks stream.Stream[Click]) func() {
	clicks := stream.Filter[Click](listClicks, func(Click) bool {
		return IsDelete(editMode.Get())
	})
	return stream.Replace[Click, Selection](clicks, selected, func(current Selection, click Click) (Selection, bool) {
		return current.Toggle(click.ID), true
	})
}
