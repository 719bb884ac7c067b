// Package expansion applies queued snippet replacements to a document as
// single transactions, registers their tabstops and keeps undo and redo
// treating an expansion as one step.
package expansion

import (
	"fmt"
	"unicode/utf8"

	"github.com/superle3/snippet-leaf/internal/editor"
	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/tabstop"
)

// UserEventSnippet annotates the edit of an expansion.
const UserEventSnippet = "input.snippet"

// Host is the document an engine edits.
type Host interface {
	State() *state.State
	Dispatch(spec state.TransactionSpec) error
}

// Engine expands queued snippets and moves between their tabstops.
type Engine struct {
	host    Host
	tracker *tabstop.Tracker
	queue   Queue
}

// NewEngine creates an engine editing host. tracker must be registered as
// a field of the same document.
func NewEngine(host Host, tracker *tabstop.Tracker) *Engine {
	return &Engine{host: host, tracker: tracker}
}

// Attach creates a tabstop tracker, an engine and an undo coordinator and
// wires them into v.
func Attach(v *editor.View) *Engine {
	tracker := tabstop.NewTracker()
	v.AddField(tracker)
	coord := NewCoordinator(v, v, tracker)
	v.History().AddInvertedEffects(coord.InvertedEffects)
	v.OnUpdate(coord.HandleUpdate)
	return NewEngine(v, tracker)
}

// Queue returns the pending changes of the current keystroke.
func (e *Engine) Queue() *Queue { return &e.queue }

// Tracker returns the tabstop tracker.
func (e *Engine) Tracker() *tabstop.Tracker { return e.tracker }

// plan is an expansion computed against one document state. presses types
// the trigger keys and edit replaces the triggers, both in the coordinates
// of that state. net undoes the presses, applies edit and then markers,
// which swaps tabstop markers for their placeholders.
type plan struct {
	entries  []ChangeSpec
	presses  change.Set
	edit     change.Set
	net      change.Set
	markers  change.Set
	tabstops []tabstop.Spec
}

// Expand applies every queued change as one transaction. It reports false
// when the queue was empty. The queue is empty afterwards in every case,
// and the document is left untouched when an error is returned.
func (e *Engine) Expand() (bool, error) {
	entries := e.queue.Drain()
	if len(entries) == 0 {
		return false, nil
	}

	start := e.host.State()
	p, err := newPlan(start, entries)
	if err != nil {
		log.ErrorErr(log.CatExpand, "snippet expansion failed", err, "entries", len(entries))
		return false, err
	}

	if !p.presses.Empty() {
		sel := placeCursors(start.Selection, entries, p.presses)
		if err := e.host.Dispatch(state.TransactionSpec{
			Changes:   &p.presses,
			Selection: &sel,
			UserEvent: state.UserEventType,
			Isolate:   true,
		}); err != nil {
			return false, fmt.Errorf("typing trigger keys: %w", err)
		}
	}

	if len(p.tabstops) == 0 {
		sel := placeCursors(start.Selection, entries, p.edit)
		if err := e.host.Dispatch(state.TransactionSpec{
			Changes:   &p.net,
			Selection: &sel,
			UserEvent: UserEventSnippet,
			Isolate:   true,
		}); err != nil {
			return false, fmt.Errorf("applying snippets: %w", err)
		}
		log.Debug(log.CatExpand, "expanded snippets", "entries", len(entries))
		return true, nil
	}

	return true, e.expandTabstops(p)
}

func newPlan(start *state.State, entries []ChangeSpec) (plan, error) {
	doc := start.Doc
	p := plan{entries: entries}

	specs := make([]change.Spec, len(entries))
	var presses []change.Spec
	for i, c := range entries {
		specs[i] = change.Spec{From: c.From, To: c.To, Insert: c.Insert}
		if utf8.RuneCountInString(c.TriggerKey) == 1 {
			presses = append(presses, change.Spec{From: c.To, To: c.To, Insert: c.TriggerKey})
		}
	}

	var err error
	if p.edit, err = change.Of(specs, doc.Len()); err != nil {
		return plan{}, fmt.Errorf("building snippet edit: %w", err)
	}
	if p.presses, err = change.Of(presses, doc.Len()); err != nil {
		return plan{}, fmt.Errorf("building trigger key edit: %w", err)
	}
	p.net = p.edit
	if !p.presses.Empty() {
		if p.net, err = p.presses.Invert(doc).Compose(p.edit); err != nil {
			return plan{}, fmt.Errorf("composing snippet edit: %w", err)
		}
	}

	newDoc, err := p.edit.Apply(doc)
	if err != nil {
		return plan{}, fmt.Errorf("applying snippet edit: %w", err)
	}

	// Tabstops are read from the new document at each change's mapped
	// start, since earlier changes shift later ones.
	for _, c := range entries {
		p.tabstops = append(p.tabstops, c.Tabstops(newDoc, p.edit.MapPos(c.From, -1))...)
	}
	if len(p.tabstops) == 0 {
		return p, nil
	}

	markers := make([]change.Spec, len(p.tabstops))
	for i, ts := range p.tabstops {
		markers[i] = change.Spec{From: ts.From, To: ts.To, Insert: ts.Placeholder}
	}
	if p.markers, err = change.Of(markers, newDoc.Len()); err != nil {
		return plan{}, fmt.Errorf("replacing tabstop markers: %w", err)
	}
	if p.net, err = p.net.Compose(p.markers); err != nil {
		return plan{}, fmt.Errorf("composing tabstop markers: %w", err)
	}
	return p, nil
}

func (e *Engine) expandTabstops(p plan) error {
	created := tabstop.NewGroups(p.tabstops, e.tracker.NextColor())
	groups := make([]tabstop.Group, 0, len(created))
	for _, g := range created {
		if g, ok := g.Map(p.markers); ok {
			groups = append(groups, g)
		}
	}

	if err := e.host.Dispatch(state.TransactionSpec{
		Changes:   &p.net,
		Effects:   []state.Effect{StartSnippet{}, tabstop.AddTabstops{Groups: groups}},
		UserEvent: UserEventSnippet,
		Isolate:   true,
	}); err != nil {
		return fmt.Errorf("applying snippets: %w", err)
	}
	log.Debug(log.CatExpand, "expanded snippets", "entries", len(p.entries), "tabstops", len(p.tabstops), "groups", len(groups))

	active := e.tracker.Groups()
	if len(active) == 0 {
		return nil
	}
	sel := active[0].Selection(false)
	if err := e.host.Dispatch(state.TransactionSpec{
		Selection: &sel,
		Effects:   []state.Effect{EndSnippet{}},
		UserEvent: state.UserEventSelect,
	}); err != nil {
		return fmt.Errorf("selecting first tabstop: %w", err)
	}
	return nil
}

// placeCursors maps sel through changes. Ranges lying within a replaced
// span become a cursor after its replacement.
func placeCursors(sel state.Selection, entries []ChangeSpec, changes change.Set) state.Selection {
	out := state.Selection{Ranges: make([]state.Range, len(sel.Ranges)), Main: sel.Main}
	for i, r := range sel.Ranges {
		out.Ranges[i] = r.Map(changes)
		for _, c := range entries {
			if c.From <= r.From() && r.To() <= c.To {
				out.Ranges[i] = state.Cursor(changes.MapPos(c.To, 1))
				break
			}
		}
	}
	return out
}

// NextTabstop selects the next tabstop group whose selection differs from
// the current one. It reports false when there is none.
func (e *Engine) NextTabstop() (bool, error) {
	groups := e.tracker.Groups()
	cur := e.host.State().Selection

	for _, g := range groups[min(1, len(groups)):] {
		// Inside the group already: jump to its end instead of selecting
		// the placeholder again.
		sel := g.Selection(g.ContainsSelection(cur))
		if sel.Eq(cur) {
			continue
		}
		if err := e.host.Dispatch(state.TransactionSpec{Selection: &sel, UserEvent: state.UserEventSelect}); err != nil {
			return false, fmt.Errorf("selecting next tabstop: %w", err)
		}
		log.Debug(log.CatTabstop, "next tabstop", "number", g.Number, "selection", sel.String())
		return true, nil
	}
	return false, nil
}

// ClearTabstops removes every tabstop.
func (e *Engine) ClearTabstops() error {
	if !e.tracker.Active() {
		return nil
	}
	return e.host.Dispatch(state.TransactionSpec{Effects: []state.Effect{tabstop.RemoveAllTabstops{}}})
}
