package tabstop

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/superle3/snippet-leaf/internal/editor"
	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/state"
)

// fracView opens `\frac{}{}` with tabstops 1 and 2 in the braces and 0 at
// the end.
func fracView(t *testing.T) (*editor.View, *Tracker) {
	t.Helper()
	v := editor.New(`\frac{}{}`, 9)
	tr := NewTracker()
	v.AddField(tr)

	groups := NewGroups([]Spec{
		{Number: 1, From: 6, To: 6},
		{Number: 2, From: 8, To: 8},
		{Number: 0, From: 9, To: 9},
	}, tr.NextColor())
	require.NoError(t, v.Dispatch(state.TransactionSpec{Effects: []state.Effect{AddTabstops{Groups: groups}}}))
	return v, tr
}

func selectGroup(t *testing.T, v *editor.View, g Group) {
	t.Helper()
	require.NoError(t, v.SetSelection(g.Selection(false)))
}

func TestTracker_AddPrependsGroups(t *testing.T) {
	v, tr := fracView(t)
	require.Equal(t, []int{1, 2, 0}, numbers(tr.Groups()))

	more := NewGroups([]Spec{{Number: 1, From: 0, To: 0}, {Number: 0, From: 1, To: 1}}, tr.NextColor())
	require.NoError(t, v.Dispatch(state.TransactionSpec{Effects: []state.Effect{AddTabstops{Groups: more}}}))

	require.Equal(t, []int{1, 0, 1, 2, 0}, numbers(tr.Groups()))
	require.Equal(t, 1, tr.Groups()[0].Color)
	require.Equal(t, 0, tr.Groups()[2].Color)
}

func TestTracker_SelectionDropsPassedGroups(t *testing.T) {
	v, tr := fracView(t)

	selectGroup(t, v, tr.Groups()[0])
	require.Equal(t, []int{1, 2, 0}, numbers(tr.Groups()))
	require.True(t, tr.Groups()[0].Hidden)
	require.False(t, tr.Groups()[1].Hidden)

	require.NoError(t, v.InsertText("x"))
	require.Equal(t, `\frac{x}{}`, v.State().Doc.String())
	require.Equal(t, []state.Range{state.Span(6, 7)}, tr.Groups()[0].Ranges())
	require.Equal(t, []state.Range{state.Cursor(9)}, tr.Groups()[1].Ranges())
	require.Equal(t, []state.Range{state.Cursor(10)}, tr.Groups()[2].Ranges())

	selectGroup(t, v, tr.Groups()[1])
	require.Equal(t, []int{2, 0}, numbers(tr.Groups()))

	selectGroup(t, v, tr.Groups()[1])
	require.False(t, tr.Active(), "only the final group was left")
}

func TestTracker_CursorLeavingClears(t *testing.T) {
	v, tr := fracView(t)
	require.NoError(t, v.SetSelection(state.NewSelection(state.Cursor(2))))
	require.Zero(t, tr.Len())
}

func TestTracker_RemoveAll(t *testing.T) {
	v, tr := fracView(t)
	require.NoError(t, v.Dispatch(state.TransactionSpec{Effects: []state.Effect{RemoveAllTabstops{}}}))
	require.False(t, tr.Active())
}

func TestTracker_GroupsAreNotModifiedInPlace(t *testing.T) {
	v, tr := fracView(t)
	before := tr.Groups()

	selectGroup(t, v, before[0])
	require.NoError(t, v.InsertText("abc"))

	require.Equal(t, []state.Range{state.Cursor(6)}, before[0].Ranges())
	require.False(t, before[0].Hidden)
	require.Len(t, before, 3)
}

func TestTracker_NextColor(t *testing.T) {
	tr := NewTracker()
	require.Equal(t, 0, tr.NextColor())

	add := func(color int) {
		tr.Update(&state.Transaction{
			StartState: state.New("", 0),
			State:      state.New("", 0),
			Effects:    []state.Effect{AddTabstops{Groups: []Group{{Number: 1, Color: color, ranges: []span{{0, 0}}}}}},
		})
	}
	add(0)
	require.Equal(t, 1, tr.NextColor())
	add(2)
	require.Equal(t, 1, tr.NextColor())
	add(1)
	require.Equal(t, 0, tr.NextColor(), "palette exhausted")
}

func TestProperty_TabbingExhaustsTracker(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 9).Draw(t, "tabstops")
		withZero := rapid.Bool().Draw(t, "withZero")

		doc := make([]byte, 0, 2*n)
		var specs []Spec
		for i := 1; i <= n; i++ {
			doc = append(doc, '{', '}')
			specs = append(specs, Spec{Number: i, From: 2*i - 1, To: 2*i - 1})
		}
		if withZero {
			specs = append(specs, Spec{Number: 0, From: len(doc), To: len(doc)})
		}

		v := editor.New(string(doc), 0)
		tr := NewTracker()
		v.AddField(tr)
		require.NoError(t, v.Dispatch(state.TransactionSpec{Effects: []state.Effect{AddTabstops{Groups: NewGroups(specs, 0)}}}))
		require.NoError(t, v.SetSelection(tr.Groups()[0].Selection(false)))

		steps := 0
		for tr.Len() > 1 {
			require.NoError(t, v.SetSelection(tr.Groups()[1].Selection(false)))
			steps++
			require.LessOrEqual(t, steps, len(specs))
		}
		require.False(t, tr.Active())
		require.Equal(t, len(specs)-1, steps)
	})
}

func TestTracker_AddedGroupsAreNotMapped(t *testing.T) {
	v, tr := fracView(t)

	set, err := change.Of([]change.Spec{{From: 0, Insert: "ab"}}, v.State().Doc.Len())
	require.NoError(t, err)
	added := NewGroups([]Spec{{Number: 1, From: 0, To: 2}}, tr.NextColor())
	require.NoError(t, v.Dispatch(state.TransactionSpec{
		Changes: &set,
		Effects: []state.Effect{AddTabstops{Groups: added}},
	}))

	groups := tr.Groups()
	require.Equal(t, []int{1, 1, 2, 0}, numbers(groups))
	require.Equal(t, []state.Range{state.Span(0, 2)}, groups[0].Ranges())
	require.Equal(t, []state.Range{state.Cursor(8)}, groups[1].Ranges())
}
