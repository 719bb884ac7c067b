package tabstop

import (
	"slices"

	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/log"
)

// AddTabstops prepends groups to the tracker; they become the next stops.
type AddTabstops struct {
	Groups []Group
}

// EffectName implements state.Effect.
func (AddTabstops) EffectName() string { return "tabstop.add" }

// RemoveAllTabstops clears the tracker.
type RemoveAllTabstops struct{}

// EffectName implements state.Effect.
func (RemoveAllTabstops) EffectName() string { return "tabstop.remove-all" }

// Tracker holds the active tabstop groups of one document, the current
// group first. It is an editor field: every transaction goes through
// Update. The group list is replaced, never modified in place, so a slice
// returned by Groups stays valid.
type Tracker struct {
	groups []Group
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// Groups returns the active groups, the current one first.
func (t *Tracker) Groups() []Group { return t.groups }

// Len returns the number of active groups.
func (t *Tracker) Len() int { return len(t.groups) }

// Active reports whether there are tabstops to move to.
func (t *Tracker) Active() bool { return len(t.groups) > 0 }

// NextColor returns the first palette index no active group uses, or 0
// when all are taken.
func (t *Tracker) NextColor() int {
	for i := range Colors {
		if !slices.ContainsFunc(t.groups, func(g Group) bool { return g.Color == i }) {
			return i
		}
	}
	return 0
}

// Update applies tr to the group list. Groups added by tr are already in
// the coordinates of the new document.
func (t *Tracker) Update(tr *state.Transaction) {
	groups := t.groups
	if tr.DocChanged() && len(groups) > 0 {
		mapped := make([]Group, 0, len(groups))
		for _, g := range groups {
			if g, ok := g.Map(tr.Changes); ok {
				mapped = append(mapped, g)
			}
		}
		groups = mapped
	}

	for _, e := range tr.Effects {
		switch e := e.(type) {
		case AddTabstops:
			groups = append(slices.Clone(e.Groups), groups...)
		case RemoveAllTabstops:
			groups = nil
		}
	}

	// Groups before the one holding the selection have been passed, by
	// tabbing or by moving the cursor.
	if tr.SelectionSet && len(groups) > 0 {
		sel := tr.State.Selection
		i := slices.IndexFunc(groups, func(g Group) bool { return g.ContainsSelection(sel) })
		if i < 0 {
			i = len(groups)
		}
		groups = groups[i:]
		if len(groups) <= 1 {
			groups = nil
		} else {
			groups = slices.Clone(groups)
			groups[0] = groups[0].hide()
		}
	}

	if len(groups) != len(t.groups) {
		log.Debug(log.CatTabstop, "tabstops changed", "before", len(t.groups), "after", len(groups))
	}
	t.groups = groups
}
