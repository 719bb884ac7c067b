// Package history implements undo/redo stacks for editor transactions.
//
// Every recorded transaction becomes an event holding the inverse of its
// changes, the selection to restore and the inverted form of its effects.
// Effects are opaque to the history; registered InvertedEffects hooks decide
// which effects of a transaction must resurface when it is undone or redone.
//
// The stacks work like a command history with an undo index: recording a new
// event discards everything that could have been redone.
package history

import (
	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/state"
)

// DefaultDepth is the number of events kept per stack.
const DefaultDepth = 200

// InvertedEffects returns the effects to store for undoing (or redoing) tr.
type InvertedEffects func(tr *state.Transaction) []state.Effect

type event struct {
	forward   change.Set
	inverse   change.Set
	effects   []state.Effect
	selection state.Selection
	userEvent string
	isolated  bool
}

// History holds the done and undone event stacks.
type History struct {
	done   []event
	undone []event
	depth  int
	hooks  []InvertedEffects
}

// New creates an empty history keeping at most depth events per stack.
func New(depth int) *History {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &History{depth: depth}
}

// AddInvertedEffects registers a hook consulted for every recorded
// transaction.
func (h *History) AddInvertedEffects(fn InvertedEffects) {
	h.hooks = append(h.hooks, fn)
}

// Record stores tr. Undo and redo transactions are recorded on the opposite
// stack; everything else lands on the done stack and clears the undone one.
func (h *History) Record(tr *state.Transaction) {
	var inverted []state.Effect
	for _, hook := range h.hooks {
		inverted = append(inverted, hook(tr)...)
	}

	ev := event{
		forward:   tr.Changes,
		inverse:   tr.Changes.Invert(tr.StartState.Doc),
		effects:   inverted,
		selection: tr.StartState.Selection,
		userEvent: tr.UserEvent,
		isolated:  tr.Isolate,
	}

	switch tr.UserEvent {
	case state.UserEventUndo:
		h.undone = h.push(h.undone, ev)
		return
	case state.UserEventRedo:
		h.done = h.push(h.done, ev)
		return
	}

	if !tr.DocChanged() && len(inverted) == 0 {
		return
	}

	if n := len(h.done); n > 0 && h.joinable(h.done[n-1], ev) {
		if joined, ok := join(h.done[n-1], ev); ok {
			h.done[n-1] = joined
			h.undone = nil
			return
		}
	}

	h.done = h.push(h.done, ev)
	h.undone = nil
}

// joinable reports whether ev continues the typing run of last.
func (h *History) joinable(last, ev event) bool {
	if last.isolated || ev.isolated || len(ev.effects) > 0 || len(last.effects) > 0 {
		return false
	}
	if ev.userEvent == "" || ev.userEvent != last.userEvent {
		return false
	}
	if ev.userEvent != state.UserEventType && ev.userEvent != state.UserEventDelete {
		return false
	}
	return last.forward.Touches(ev.forward)
}

func join(last, ev event) (event, bool) {
	forward, err := last.forward.Compose(ev.forward)
	if err != nil {
		return event{}, false
	}
	inverse, err := ev.inverse.Compose(last.inverse)
	if err != nil {
		return event{}, false
	}
	last.forward = forward
	last.inverse = inverse
	return last, true
}

func (h *History) push(stack []event, ev event) []event {
	stack = append(stack, ev)
	if len(stack) > h.depth {
		stack = stack[len(stack)-h.depth:]
	}
	return stack
}

// PopUndo removes the newest done event and returns the transaction that
// reverts it. Dispatching the returned spec records the redo event.
func (h *History) PopUndo() (state.TransactionSpec, bool) {
	return pop(&h.done, state.UserEventUndo)
}

// PopRedo removes the newest undone event and returns the transaction that
// reapplies it.
func (h *History) PopRedo() (state.TransactionSpec, bool) {
	return pop(&h.undone, state.UserEventRedo)
}

func pop(stack *[]event, userEvent string) (state.TransactionSpec, bool) {
	n := len(*stack)
	if n == 0 {
		return state.TransactionSpec{}, false
	}
	ev := (*stack)[n-1]
	*stack = (*stack)[:n-1]

	changes := ev.inverse
	sel := ev.selection
	return state.TransactionSpec{
		Changes:   &changes,
		Selection: &sel,
		Effects:   ev.effects,
		UserEvent: userEvent,
	}, true
}

// CanUndo returns true if there are events to undo.
func (h *History) CanUndo() bool { return len(h.done) > 0 }

// CanRedo returns true if there are events to redo.
func (h *History) CanRedo() bool { return len(h.undone) > 0 }

// Depths returns the sizes of the done and undone stacks.
func (h *History) Depths() (done, undone int) { return len(h.done), len(h.undone) }

// Clear drops all events.
func (h *History) Clear() {
	h.done = nil
	h.undone = nil
}
