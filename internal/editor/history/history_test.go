package history

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/state"
)

// ============================================================================
// Test helpers
// ============================================================================

type marker struct{ undone bool }

func (marker) EffectName() string { return "marker" }

// harness applies specs to a state and records them, the way a view does.
type harness struct {
	t  require.TestingT
	h  *History
	st *state.State
}

func newHarness(t require.TestingT, doc string, cursor int) *harness {
	return &harness{t: t, h: New(0), st: state.New(doc, cursor)}
}

func (x *harness) dispatch(spec state.TransactionSpec) {
	tr, err := state.Resolve(x.st, spec)
	require.NoError(x.t, err)
	x.h.Record(tr)
	x.st = tr.State
}

func (x *harness) insert(pos int, s string, userEvent string, isolate bool) {
	set, err := change.Of([]change.Spec{{From: pos, To: pos, Insert: s}}, x.st.Doc.Len())
	require.NoError(x.t, err)
	sel := state.NewSelection(state.Cursor(pos + len(s)))
	x.dispatch(state.TransactionSpec{Changes: &set, Selection: &sel, UserEvent: userEvent, Isolate: isolate})
}

func (x *harness) undo() bool {
	spec, ok := x.h.PopUndo()
	if ok {
		x.dispatch(spec)
	}
	return ok
}

func (x *harness) redo() bool {
	spec, ok := x.h.PopRedo()
	if ok {
		x.dispatch(spec)
	}
	return ok
}

func (x *harness) doc() string { return x.st.Doc.String() }

// ============================================================================
// Undo / Redo
// ============================================================================

func TestHistory_UndoRedo(t *testing.T) {
	x := newHarness(t, "ab", 2)
	x.insert(2, "c", "", false)
	x.insert(3, "d", "", false)

	require.True(t, x.undo())
	require.Equal(t, "abc", x.doc())
	require.Equal(t, state.Cursor(3), x.st.Selection.MainRange())

	require.True(t, x.undo())
	require.Equal(t, "ab", x.doc())
	require.False(t, x.undo())

	require.True(t, x.redo())
	require.True(t, x.redo())
	require.Equal(t, "abcd", x.doc())
	require.False(t, x.redo())
}

func TestHistory_NewEventClearsRedo(t *testing.T) {
	x := newHarness(t, "", 0)
	x.insert(0, "a", "", false)
	x.undo()
	require.True(t, x.h.CanRedo())

	x.insert(0, "b", "", false)

	require.False(t, x.h.CanRedo())
}

func TestHistory_SelectionOnlyTransactionsAreSkipped(t *testing.T) {
	x := newHarness(t, "abc", 0)
	sel := state.NewSelection(state.Cursor(2))
	x.dispatch(state.TransactionSpec{Selection: &sel})

	require.False(t, x.h.CanUndo())
}

func TestHistory_TypingJoinsUnlessIsolated(t *testing.T) {
	x := newHarness(t, "", 0)
	x.insert(0, "a", state.UserEventType, false)
	x.insert(1, "b", state.UserEventType, false)
	x.insert(2, "c", state.UserEventType, true)
	x.insert(3, "d", state.UserEventType, false)

	done, _ := x.h.Depths()
	require.Equal(t, 3, done)

	x.undo()
	require.Equal(t, "abc", x.doc())
	x.undo()
	require.Equal(t, "ab", x.doc())
	x.undo()
	require.Equal(t, "", x.doc())
}

func TestHistory_DepthLimit(t *testing.T) {
	x := &harness{t: t, h: New(2), st: state.New("", 0)}
	for i := 0; i < 5; i++ {
		x.insert(i, "x", "", false)
	}

	done, _ := x.h.Depths()
	require.Equal(t, 2, done)
}

// ============================================================================
// Inverted effects
// ============================================================================

func TestHistory_InvertedEffectsResurface(t *testing.T) {
	x := newHarness(t, "", 0)
	x.h.AddInvertedEffects(func(tr *state.Transaction) []state.Effect {
		var out []state.Effect
		for _, e := range tr.Effects {
			if m, ok := e.(marker); ok {
				out = append(out, marker{undone: !m.undone})
			}
		}
		return out
	})

	// effect-only transaction still records an event
	x.dispatch(state.TransactionSpec{Effects: []state.Effect{marker{}}})
	require.True(t, x.h.CanUndo())

	spec, ok := x.h.PopUndo()
	require.True(t, ok)
	require.Equal(t, []state.Effect{marker{undone: true}}, spec.Effects)
	x.dispatch(spec)

	spec, ok = x.h.PopRedo()
	require.True(t, ok)
	require.Equal(t, []state.Effect{marker{undone: false}}, spec.Effects)
}

// ============================================================================
// Properties
// ============================================================================

func TestProperty_UndoAllRestoresOriginal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		orig := rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "doc")
		x := newHarness(t, orig, 0)

		steps := rapid.IntRange(1, 8).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			pos := rapid.IntRange(0, x.st.Doc.Len()).Draw(t, "pos")
			s := rapid.StringMatching(`[A-Z]{1,3}`).Draw(t, "insert")
			x.insert(pos, s, state.UserEventType, rapid.Bool().Draw(t, "isolate"))
		}
		final := x.doc()

		for x.undo() {
		}
		require.Equal(t, orig, x.doc())

		for x.redo() {
		}
		require.Equal(t, final, x.doc())
	})
}
