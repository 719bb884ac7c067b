// Package state holds the editor state model: selections, effects and
// transactions.
package state

import (
	"fmt"
	"strings"

	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/text"
)

// User event annotations understood by the history.
const (
	UserEventType   = "input.type"
	UserEventDelete = "delete.backward"
	UserEventUndo   = "undo"
	UserEventRedo   = "redo"
	UserEventSelect = "select"
)

// Range is a selection range. Anchor stays put when extending; Head moves.
type Range struct {
	Anchor int
	Head   int
}

// Cursor returns an empty range at pos.
func Cursor(pos int) Range { return Range{Anchor: pos, Head: pos} }

// Span returns a range from from to to.
func Span(from, to int) Range { return Range{Anchor: from, Head: to} }

// From returns the lower end of the range.
func (r Range) From() int {
	return min(r.Anchor, r.Head)
}

// To returns the upper end of the range.
func (r Range) To() int {
	return max(r.Anchor, r.Head)
}

// Empty reports whether the range is a cursor.
func (r Range) Empty() bool {
	return r.Anchor == r.Head
}

// Map maps the range through a change set.
func (r Range) Map(changes change.Set) Range {
	if r.Empty() {
		pos := changes.MapPos(r.Head, -1)
		return Cursor(pos)
	}
	from := changes.MapPos(r.From(), 1)
	to := changes.MapPos(r.To(), -1)
	if to < from {
		to = from
	}
	if r.Anchor > r.Head {
		return Range{Anchor: to, Head: from}
	}
	return Range{Anchor: from, Head: to}
}

// Selection is an ordered list of ranges with a main range.
type Selection struct {
	Ranges []Range
	Main   int
}

// NewSelection creates a selection whose main range is the last one.
func NewSelection(ranges ...Range) Selection {
	return Selection{Ranges: ranges, Main: len(ranges) - 1}
}

// MainRange returns the main range.
func (s Selection) MainRange() Range {
	if len(s.Ranges) == 0 {
		return Range{}
	}
	if s.Main < 0 || s.Main >= len(s.Ranges) {
		return s.Ranges[len(s.Ranges)-1]
	}
	return s.Ranges[s.Main]
}

// Eq reports whether two selections have the same ranges and main index.
func (s Selection) Eq(other Selection) bool {
	if len(s.Ranges) != len(other.Ranges) || s.Main != other.Main {
		return false
	}
	for i := range s.Ranges {
		if s.Ranges[i] != other.Ranges[i] {
			return false
		}
	}
	return true
}

// Map maps every range through a change set.
func (s Selection) Map(changes change.Set) Selection {
	out := Selection{Ranges: make([]Range, len(s.Ranges)), Main: s.Main}
	for i, r := range s.Ranges {
		out.Ranges[i] = r.Map(changes)
	}
	return out
}

// Clamp limits every range to a document of the given length.
func (s Selection) Clamp(length int) Selection {
	out := Selection{Ranges: make([]Range, len(s.Ranges)), Main: s.Main}
	for i, r := range s.Ranges {
		out.Ranges[i] = Range{Anchor: min(max(r.Anchor, 0), length), Head: min(max(r.Head, 0), length)}
	}
	return out
}

func (s Selection) String() string {
	parts := make([]string, len(s.Ranges))
	for i, r := range s.Ranges {
		if r.Empty() {
			parts[i] = fmt.Sprintf("%d", r.Head)
		} else {
			parts[i] = fmt.Sprintf("%d-%d", r.Anchor, r.Head)
		}
	}
	return strings.Join(parts, ",")
}

// Effect is an opaque marker attached to a transaction.
type Effect interface {
	EffectName() string
}

// HasEffect reports whether effects contains an effect of type T.
func HasEffect[T Effect](effects []Effect) bool {
	for _, e := range effects {
		if _, ok := e.(T); ok {
			return true
		}
	}
	return false
}

// State is an immutable snapshot of a document and its selection.
type State struct {
	Doc       text.Text
	Selection Selection
}

// New creates a state with a single cursor.
func New(doc string, cursor int) *State {
	d := text.New(doc)
	return &State{Doc: d, Selection: NewSelection(Cursor(min(max(cursor, 0), d.Len())))}
}

// SliceDoc returns the document text between from and to.
func (s *State) SliceDoc(from, to int) string { return s.Doc.SliceString(from, to) }

// TransactionSpec describes an update to dispatch. Changes refer to the
// current document, Selection to the document after the changes.
type TransactionSpec struct {
	Changes   *change.Set
	Selection *Selection
	Effects   []Effect
	UserEvent string
	// Isolate keeps the resulting history event from joining its neighbours.
	Isolate bool
}

// Transaction is a resolved update.
type Transaction struct {
	StartState *State
	State      *State
	Changes    change.Set
	// SelectionSet is true when the TransactionSpec carried an explicit selection.
	SelectionSet bool
	Effects      []Effect
	UserEvent    string
	Isolate      bool
}

// DocChanged reports whether the transaction changed the document.
func (tr *Transaction) DocChanged() bool { return !tr.Changes.Empty() }

// Resolve builds a transaction from a spec against a start state.
func Resolve(start *State, spec TransactionSpec) (*Transaction, error) {
	changes := change.Empty(start.Doc.Len())
	if spec.Changes != nil {
		changes = *spec.Changes
	}
	doc, err := changes.Apply(start.Doc)
	if err != nil {
		return nil, fmt.Errorf("applying changes: %w", err)
	}

	sel := start.Selection.Map(changes)
	if spec.Selection != nil {
		sel = spec.Selection.Clamp(doc.Len())
	}

	return &Transaction{
		StartState:   start,
		State:        &State{Doc: doc, Selection: sel},
		Changes:      changes,
		SelectionSet: spec.Selection != nil,
		Effects:      spec.Effects,
		UserEvent:    spec.UserEvent,
		Isolate:      spec.Isolate,
	}, nil
}
