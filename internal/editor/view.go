// Package editor provides a minimal host editor: a document view that owns
// the current state and history, applies transactions, keeps state fields in
// sync and notifies update listeners.
package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/history"
	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/log"
)

// Field is per-document state updated by every transaction.
type Field interface {
	Update(tr *state.Transaction)
}

// UpdateListener is called after a transaction has been applied.
type UpdateListener func(tr *state.Transaction)

// View is an open document.
type View struct {
	id        string
	st        *state.State
	history   *history.History
	fields    []Field
	listeners []UpdateListener
}

// Option configures a View.
type Option func(*View)

// WithHistoryDepth limits the number of undo events kept.
func WithHistoryDepth(depth int) Option {
	return func(v *View) {
		v.history = history.New(depth)
	}
}

// WithSelection replaces the initial cursor.
func WithSelection(sel state.Selection) Option {
	return func(v *View) {
		v.st = &state.State{Doc: v.st.Doc, Selection: sel.Clamp(v.st.Doc.Len())}
	}
}

// New opens a document with the cursor at the given offset.
func New(doc string, cursor int, opts ...Option) *View {
	v := &View{
		id:      uuid.NewString(),
		st:      state.New(doc, cursor),
		history: history.New(history.DefaultDepth),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ID identifies the view in logs.
func (v *View) ID() string { return v.id }

// State returns the current state.
func (v *View) State() *state.State { return v.st }

// History returns the view's history.
func (v *View) History() *history.History { return v.history }

// AddField registers a state field.
func (v *View) AddField(f Field) { v.fields = append(v.fields, f) }

// OnUpdate registers an update listener.
func (v *View) OnUpdate(fn UpdateListener) { v.listeners = append(v.listeners, fn) }

// Dispatch applies a transaction. The history records it against the state
// it starts from, then fields are updated and listeners run.
func (v *View) Dispatch(spec state.TransactionSpec) error {
	tr, err := state.Resolve(v.st, spec)
	if err != nil {
		log.ErrorErr(log.CatEditor, "dispatch failed", err, "view", v.id)
		return fmt.Errorf("dispatching transaction: %w", err)
	}

	v.history.Record(tr)
	v.st = tr.State
	for _, f := range v.fields {
		f.Update(tr)
	}
	for _, fn := range v.listeners {
		fn(tr)
	}
	return nil
}

// Undo reverts the newest history event.
func (v *View) Undo() bool {
	spec, ok := v.history.PopUndo()
	if !ok {
		return false
	}
	return v.Dispatch(spec) == nil
}

// Redo reapplies the newest undone event.
func (v *View) Redo() bool {
	spec, ok := v.history.PopRedo()
	if !ok {
		return false
	}
	return v.Dispatch(spec) == nil
}

// SetSelection replaces the selection.
func (v *View) SetSelection(sel state.Selection) error {
	return v.Dispatch(state.TransactionSpec{Selection: &sel, UserEvent: state.UserEventSelect})
}

// ReplaceSelection replaces every selection range with s and places the
// cursors after the inserted text.
func (v *View) ReplaceSelection(s string, userEvent string) error {
	ranges := v.st.Selection.Ranges
	specs := make([]change.Spec, len(ranges))
	for i, r := range ranges {
		specs[i] = change.Spec{From: r.From(), To: r.To(), Insert: s}
	}
	set, err := change.Of(specs, v.st.Doc.Len())
	if err != nil {
		return fmt.Errorf("replacing selection: %w", err)
	}

	sel := state.Selection{Ranges: make([]state.Range, len(ranges)), Main: v.st.Selection.Main}
	for i, r := range ranges {
		sel.Ranges[i] = state.Cursor(set.MapPos(r.To(), 1))
	}
	return v.Dispatch(state.TransactionSpec{Changes: &set, Selection: &sel, UserEvent: userEvent})
}

// InsertText types s at every cursor.
func (v *View) InsertText(s string) error {
	return v.ReplaceSelection(s, state.UserEventType)
}

// InsertNewline types a line break at every cursor.
func (v *View) InsertNewline() error {
	return v.ReplaceSelection("\n", state.UserEventType)
}

// DeleteBackward deletes the selection, or the grapheme before each cursor.
func (v *View) DeleteBackward() error {
	doc := v.st.Doc.String()
	var specs []change.Spec
	for _, r := range v.st.Selection.Ranges {
		if !r.Empty() {
			specs = append(specs, change.Spec{From: r.From(), To: r.To()})
			continue
		}
		if r.Head == 0 {
			continue
		}
		specs = append(specs, change.Spec{From: PrevGraphemeBoundary(doc, r.Head), To: r.Head})
	}
	if len(specs) == 0 {
		return nil
	}
	set, err := change.Of(specs, len(doc))
	if err != nil {
		return fmt.Errorf("deleting backward: %w", err)
	}
	return v.Dispatch(state.TransactionSpec{Changes: &set, UserEvent: state.UserEventDelete})
}

// MoveCursor moves every cursor by delta graphemes, collapsing selections.
func (v *View) MoveCursor(delta int) error {
	doc := v.st.Doc.String()
	sel := state.Selection{Ranges: make([]state.Range, len(v.st.Selection.Ranges)), Main: v.st.Selection.Main}
	for i, r := range v.st.Selection.Ranges {
		pos := r.Head
		for n := delta; n < 0; n++ {
			pos = PrevGraphemeBoundary(doc, pos)
		}
		for n := delta; n > 0; n-- {
			pos = NextGraphemeBoundary(doc, pos)
		}
		sel.Ranges[i] = state.Cursor(pos)
	}
	return v.SetSelection(sel)
}
