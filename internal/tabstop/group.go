// Package tabstop tracks the numbered placeholders left behind by snippet
// expansions and maps them through later edits.
package tabstop

import (
	"cmp"
	"slices"

	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/state"
)

// Colors is the size of the tabstop palette.
const Colors = 3

// Spec is one tabstop in document coordinates.
type Spec struct {
	Number      int
	From        int
	To          int
	Placeholder string
}

// Group is every tabstop sharing a number. Groups are values; methods
// return modified copies.
type Group struct {
	Number int
	Color  int
	// Hidden is set once the group has been selected.
	Hidden bool
	ranges []span
}

type span struct{ from, to int }

// NewGroups builds one group per tabstop number, ordered so that groups
// are visited by ascending number with group 0 last.
func NewGroups(specs []Spec, color int) []Group {
	byNumber := make(map[int][]span)
	for _, s := range specs {
		byNumber[s.Number] = append(byNumber[s.Number], span{s.From, s.To})
	}

	numbers := make([]int, 0, len(byNumber))
	for n := range byNumber {
		numbers = append(numbers, n)
	}
	slices.SortFunc(numbers, compareVisitOrder)

	groups := make([]Group, 0, len(numbers))
	for _, n := range numbers {
		ranges := byNumber[n]
		slices.SortStableFunc(ranges, func(a, b span) int { return cmp.Compare(a.from, b.from) })
		groups = append(groups, Group{Number: n, Color: color, ranges: ranges})
	}
	return groups
}

// compareVisitOrder sorts tabstop numbers ascending, with 0 at the end.
func compareVisitOrder(a, b int) int {
	switch {
	case a == b:
		return 0
	case a == 0:
		return 1
	case b == 0:
		return -1
	}
	return cmp.Compare(a, b)
}

// Map maps the group through changes. Ranges grow to include text
// inserted at either end. A range that sits strictly inside deleted text
// is removed; ok is false when no range is left.
func (g Group) Map(changes change.Set) (Group, bool) {
	out := make([]span, 0, len(g.ranges))
	for _, r := range g.ranges {
		if deleted(changes, r) {
			continue
		}
		from := changes.MapPos(r.from, -1)
		to := max(changes.MapPos(r.to, 1), from)
		out = append(out, span{from, to})
	}
	g.ranges = out
	return g, len(out) > 0
}

func deleted(changes change.Set, r span) bool {
	gone := false
	changes.IterChanges(func(fromA, toA, _, _ int, _ string) {
		if fromA < r.from && r.to < toA {
			gone = true
		}
	})
	return gone
}

// Selection returns the ranges of the group as a selection. With
// endpoints set every range collapses to its end.
func (g Group) Selection(endpoints bool) state.Selection {
	ranges := make([]state.Range, len(g.ranges))
	for i, r := range g.ranges {
		if endpoints {
			ranges[i] = state.Cursor(r.to)
		} else {
			ranges[i] = state.Span(r.from, r.to)
		}
	}
	return state.NewSelection(ranges...)
}

// ContainsSelection reports whether every range of sel lies within one of
// the group's ranges.
func (g Group) ContainsSelection(sel state.Selection) bool {
	for _, r := range sel.Ranges {
		if !slices.ContainsFunc(g.ranges, func(s span) bool {
			return s.from <= r.From() && s.to >= r.To()
		}) {
			return false
		}
	}
	return true
}

// Ranges returns the spans of the group, empty ones included.
func (g Group) Ranges() []state.Range {
	return g.Selection(false).Ranges
}

// VisibleRanges returns the non-empty spans, the ones worth highlighting.
func (g Group) VisibleRanges() []state.Range {
	var out []state.Range
	for _, r := range g.ranges {
		if r.from != r.to {
			out = append(out, state.Span(r.from, r.to))
		}
	}
	return out
}

func (g Group) hide() Group {
	g.Hidden = true
	return g
}
