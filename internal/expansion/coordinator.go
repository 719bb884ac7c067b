package expansion

import (
	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/tabstop"
)

// StartSnippet marks the edit of an expansion that left tabstops.
type StartSnippet struct{}

// EndSnippet marks the selection of the first tabstop after an expansion.
// When it comes from a redo, Groups holds the tabstops that were active
// when the expansion was undone.
type EndSnippet struct {
	Groups []tabstop.Group
}

// UndidStartSnippet is the inverse of StartSnippet.
type UndidStartSnippet struct{}

// UndidEndSnippet is the inverse of EndSnippet.
type UndidEndSnippet struct{}

func (StartSnippet) EffectName() string      { return "snippet.start" }
func (EndSnippet) EffectName() string        { return "snippet.end" }
func (UndidStartSnippet) EffectName() string { return "snippet.undid-start" }
func (UndidEndSnippet) EffectName() string   { return "snippet.undid-end" }

// Undoer is the undo/redo command pair of the editor.
type Undoer interface {
	Undo() bool
	Redo() bool
}

// Coordinator makes undo and redo step over an expansion as a whole: the
// edit and the selection of its first tabstop. Undoing the selection
// triggers a second undo for the edit, redoing the edit a second redo for
// the selection.
type Coordinator struct {
	host    Host
	undoer  Undoer
	tracker *tabstop.Tracker
}

// NewCoordinator creates a coordinator. Register InvertedEffects with the
// history and HandleUpdate as update listener.
func NewCoordinator(host Host, undoer Undoer, tracker *tabstop.Tracker) *Coordinator {
	return &Coordinator{host: host, undoer: undoer, tracker: tracker}
}

// InvertedEffects maps the snippet markers of tr to the markers its undo
// (or redo) must carry. It runs before tr reaches the tracker, so the
// groups stored for a redo are the ones active while undoing.
func (c *Coordinator) InvertedEffects(tr *state.Transaction) []state.Effect {
	var out []state.Effect
	for _, e := range tr.Effects {
		switch e.(type) {
		case StartSnippet:
			out = append(out, UndidStartSnippet{})
		case UndidStartSnippet:
			out = append(out, StartSnippet{})
		case EndSnippet:
			out = append(out, UndidEndSnippet{})
		case UndidEndSnippet:
			out = append(out, EndSnippet{Groups: c.tracker.Groups()})
		}
	}
	return out
}

// HandleUpdate issues the follow-up undo or redo and keeps the tracker in
// step with the snippet boundaries crossed.
func (c *Coordinator) HandleUpdate(tr *state.Transaction) {
	switch tr.UserEvent {
	case state.UserEventUndo:
		crossed := false
		for _, e := range tr.Effects {
			switch e.(type) {
			case UndidEndSnippet:
				crossed = true
				log.Debug(log.CatHistory, "undoing snippet edit")
				c.undoer.Undo()
			case UndidStartSnippet:
				crossed = true
			}
		}
		if crossed && c.tracker.Active() {
			c.dispatch(tabstop.RemoveAllTabstops{})
		}

	case state.UserEventRedo:
		for _, e := range tr.Effects {
			switch e := e.(type) {
			case StartSnippet:
				log.Debug(log.CatHistory, "redoing snippet selection")
				c.undoer.Redo()
			case EndSnippet:
				if len(e.Groups) > 0 {
					c.dispatch(tabstop.AddTabstops{Groups: e.Groups})
				}
			}
		}
	}
}

func (c *Coordinator) dispatch(effect state.Effect) {
	if err := c.host.Dispatch(state.TransactionSpec{Effects: []state.Effect{effect}}); err != nil {
		log.ErrorErr(log.CatHistory, "updating tabstops", err)
	}
}
