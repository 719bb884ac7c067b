package tabstop

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/state"
)

func numbers(groups []Group) []int {
	out := make([]int, len(groups))
	for i, g := range groups {
		out[i] = g.Number
	}
	return out
}

func TestNewGroups_VisitOrder(t *testing.T) {
	groups := NewGroups([]Spec{
		{Number: 2, From: 10, To: 10},
		{Number: 0, From: 12, To: 12},
		{Number: 1, From: 8, To: 9},
		{Number: 1, From: 2, To: 3},
	}, 1)

	require.Equal(t, []int{1, 2, 0}, numbers(groups))
	require.Equal(t, []state.Range{state.Span(2, 3), state.Span(8, 9)}, groups[0].Ranges())
	for _, g := range groups {
		require.Equal(t, 1, g.Color)
		require.False(t, g.Hidden)
	}
}

func TestProperty_GroupsVisitAscendingEndingAtZero(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nums := rapid.SliceOfN(rapid.IntRange(0, 12), 1, 20).Draw(t, "numbers")
		specs := make([]Spec, len(nums))
		for i, n := range nums {
			specs[i] = Spec{Number: n, From: i, To: i}
		}

		got := numbers(NewGroups(specs, 0))

		seen := map[int]bool{}
		for _, n := range nums {
			seen[n] = true
		}
		require.Len(t, got, len(seen))
		for i := 1; i < len(got); i++ {
			require.NotZero(t, got[i-1], "group 0 comes last")
			if got[i] != 0 {
				require.Less(t, got[i-1], got[i])
			}
		}
	})
}

func mustChanges(t *testing.T, length int, specs ...change.Spec) change.Set {
	t.Helper()
	set, err := change.Of(specs, length)
	require.NoError(t, err)
	return set
}

func TestGroup_MapGrowsWithInsertions(t *testing.T) {
	g := NewGroups([]Spec{{Number: 1, From: 5, To: 5}}, 0)[0]

	mapped, ok := g.Map(mustChanges(t, 10, change.Spec{From: 5, To: 5, Insert: "ab"}))
	require.True(t, ok)
	require.Equal(t, []state.Range{state.Span(5, 7)}, mapped.Ranges())

	mapped, ok = mapped.Map(mustChanges(t, 12, change.Spec{From: 7, To: 7, Insert: "c"}))
	require.True(t, ok)
	require.Equal(t, []state.Range{state.Span(5, 8)}, mapped.Ranges())
}

func TestGroup_MapReplacedPlaceholder(t *testing.T) {
	g := NewGroups([]Spec{{Number: 1, From: 5, To: 8}}, 0)[0]

	mapped, ok := g.Map(mustChanges(t, 10, change.Spec{From: 5, To: 8, Insert: "x"}))
	require.True(t, ok)
	require.Equal(t, []state.Range{state.Span(5, 6)}, mapped.Ranges())
}

func TestGroup_MapShiftsAndCollapses(t *testing.T) {
	g := NewGroups([]Spec{{Number: 1, From: 5, To: 8}}, 0)[0]

	mapped, ok := g.Map(mustChanges(t, 10, change.Spec{From: 0, To: 2}))
	require.True(t, ok)
	require.Equal(t, []state.Range{state.Span(3, 6)}, mapped.Ranges())

	mapped, ok = g.Map(mustChanges(t, 10, change.Spec{From: 5, To: 8}))
	require.True(t, ok, "empty tabstops stay navigable")
	require.Equal(t, []state.Range{state.Cursor(5)}, mapped.Ranges())
	require.Empty(t, mapped.VisibleRanges())
}

func TestGroup_MapDropsDeletedRanges(t *testing.T) {
	g := NewGroups([]Spec{
		{Number: 1, From: 4, To: 4},
		{Number: 1, From: 12, To: 13},
	}, 0)[0]

	mapped, ok := g.Map(mustChanges(t, 20, change.Spec{From: 2, To: 6}))
	require.True(t, ok)
	require.Equal(t, []state.Range{state.Span(8, 9)}, mapped.Ranges())

	_, ok = mapped.Map(mustChanges(t, 16, change.Spec{From: 0, To: 16}))
	require.False(t, ok)
}

func TestGroup_Selection(t *testing.T) {
	g := NewGroups([]Spec{
		{Number: 1, From: 2, To: 4},
		{Number: 1, From: 8, To: 8},
	}, 0)[0]

	require.Equal(t, state.NewSelection(state.Span(2, 4), state.Cursor(8)), g.Selection(false))
	require.Equal(t, state.NewSelection(state.Cursor(4), state.Cursor(8)), g.Selection(true))
	require.Equal(t, []state.Range{state.Span(2, 4)}, g.VisibleRanges())
}

func TestGroup_ContainsSelection(t *testing.T) {
	g := NewGroups([]Spec{
		{Number: 1, From: 2, To: 6},
		{Number: 1, From: 10, To: 10},
	}, 0)[0]

	tests := []struct {
		name string
		sel  state.Selection
		want bool
	}{
		{"cursor inside", state.NewSelection(state.Cursor(3)), true},
		{"cursor at start", state.NewSelection(state.Cursor(2)), true},
		{"cursor at end", state.NewSelection(state.Cursor(6)), true},
		{"whole range", state.NewSelection(state.Span(2, 6)), true},
		{"empty range", state.NewSelection(state.Cursor(10)), true},
		{"both ranges", state.NewSelection(state.Cursor(4), state.Cursor(10)), true},
		{"outside", state.NewSelection(state.Cursor(8)), false},
		{"crossing the end", state.NewSelection(state.Span(5, 7)), false},
		{"one range outside", state.NewSelection(state.Cursor(4), state.Cursor(9)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, g.ContainsSelection(tt.sel))
		})
	}
}
