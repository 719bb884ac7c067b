package expansion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/tabstop"
)

func TestUndo_RevertsExpansionInOneStep(t *testing.T) {
	v, eng := typeFrac(t)

	require.True(t, v.Undo())
	require.Equal(t, "$a+//$", v.State().Doc.String())
	require.False(t, eng.Tracker().Active())

	require.True(t, v.Undo())
	require.Equal(t, "$a+/$", v.State().Doc.String())
	require.True(t, v.Undo())
	require.Equal(t, "$a+$", v.State().Doc.String())
	require.False(t, v.Undo())
}

func TestRedo_RestoresTabstops(t *testing.T) {
	v, eng := typeFrac(t)
	_, err := eng.NextTabstop()
	require.NoError(t, err)
	requireCursor(t, v, 11)

	require.True(t, v.Undo())
	require.Equal(t, "$a+//$", v.State().Doc.String())

	require.True(t, v.Redo())
	require.Equal(t, `$a+\frac{}{}$`, v.State().Doc.String())
	requireCursor(t, v, 11)
	require.Equal(t, []int{2, 0}, numbers(eng.Tracker().Groups()))

	ok, err := eng.NextTabstop()
	require.NoError(t, err)
	require.True(t, ok)
	requireCursor(t, v, 12)
}

func TestUndo_TypingKeepsTabstops(t *testing.T) {
	v, eng := typeFrac(t)
	require.NoError(t, v.InsertText("x"))

	require.True(t, v.Undo())
	require.Equal(t, `$a+\frac{}{}$`, v.State().Doc.String())
	require.Equal(t, []int{1, 2, 0}, numbers(eng.Tracker().Groups()))

	require.True(t, v.Undo())
	require.Equal(t, "$a+//$", v.State().Doc.String())
	require.False(t, eng.Tracker().Active())
}

func TestCoordinator_InvertedEffects(t *testing.T) {
	tracker := tabstop.NewTracker()
	groups := tabstop.NewGroups([]tabstop.Spec{{Number: 1}, {Number: 0, From: 1, To: 1}}, 0)
	tracker.Update(&state.Transaction{Effects: []state.Effect{tabstop.AddTabstops{Groups: groups}}})
	c := NewCoordinator(nil, nil, tracker)

	got := c.InvertedEffects(&state.Transaction{Effects: []state.Effect{
		StartSnippet{},
		UndidStartSnippet{},
		EndSnippet{},
		UndidEndSnippet{},
		tabstop.RemoveAllTabstops{},
	}})
	require.Equal(t, []state.Effect{
		UndidStartSnippet{},
		StartSnippet{},
		UndidEndSnippet{},
		EndSnippet{Groups: groups},
	}, got)
}
