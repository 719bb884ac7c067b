// Package suite turns keystrokes into LaTeX editing actions: snippet
// expansion, tabstop navigation, autofraction, matrix shortcuts, tabout
// and bracket enlargement.
package suite

import (
	"strings"
	"sync/atomic"

	"github.com/superle3/snippet-leaf/internal/editor"
	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/expansion"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/mathctx"
	"github.com/superle3/snippet-leaf/internal/tabstop"
)

// Handler runs the editing features for the keystrokes of one view.
type Handler struct {
	view     *editor.View
	engine   *expansion.Engine
	settings atomic.Pointer[Settings]
}

// NewHandler attaches an expansion engine to v.
func NewHandler(v *editor.View, settings Settings) *Handler {
	h := &Handler{view: v, engine: expansion.Attach(v)}
	h.settings.Store(&settings)
	return h
}

// SetSettings replaces the settings snapshot. The next keystroke sees the
// new one; a keystroke in progress keeps the old one.
func (h *Handler) SetSettings(s Settings) { h.settings.Store(&s) }

// Settings returns the current settings snapshot.
func (h *Handler) Settings() Settings { return *h.settings.Load() }

// Engine returns the expansion engine of the view.
func (h *Handler) Engine() *expansion.Engine { return h.engine }

// Tabstops returns the active tabstop groups, the current one first.
func (h *Handler) Tabstops() []tabstop.Group { return h.engine.Tracker().Groups() }

// HandleKeydown runs the features for k in order and reports whether one
// of them consumed the key. A key that is not consumed should be handled
// by the editor's default typing.
func (h *Handler) HandleKeydown(k Key) bool {
	s := h.settings.Load()
	ctx := mathctx.FromState(h.view.State())

	if s.AutoDeleteDollars && k.Name == KeyBackspace {
		if h.run("auto-delete dollars", k, func() (bool, error) { return h.autoDeleteDollars(ctx.State) }) {
			return true
		}
	}

	if s.SnippetsEnabled {
		if s.SuppressOnIME && k.IME {
			return false
		}
		if !k.Ctrl {
			ok, err := h.runSnippets(s, ctx, k)
			if err != nil {
				log.ErrorErr(log.CatKeys, "running snippets", err, "key", k.String())
			} else if ok {
				return true
			}
		}
	}

	if k.Name == KeyTab {
		if h.run("next tabstop", k, h.engine.NextTabstop) {
			return true
		}
	}

	if s.Autofraction.Enabled && ctx.Mode.StrictlyInMath() && k.Name == "/" {
		if h.run("autofraction", k, func() (bool, error) { return h.autofraction(s, ctx) }) {
			return true
		}
	}

	if s.MatrixShortcuts.Enabled && ctx.Mode.StrictlyInMath() && (k.Name == KeyTab || k.Name == KeyEnter) {
		if h.run("matrix shortcut", k, func() (bool, error) { return h.matrixShortcut(s, ctx, k) }) {
			return true
		}
	}

	if s.TaboutEnabled {
		main := ctx.State.Selection.MainRange()
		if (k.Name == KeyTab && main.Empty()) || closesBracket(ctx.State, k) {
			if h.run("tabout", k, func() (bool, error) { return h.tabout(ctx) }) {
				return true
			}
		}
	}

	if s.AutoEnlarge.Enabled && ctx.Mode.StrictlyInMath() && isCloseBracket(k.Name) {
		if h.run("close bracket", k, func() (bool, error) { return h.typeCloseBracket(s, k) }) {
			return true
		}
	}

	if k.Name == KeyEscape && h.engine.Tracker().Active() {
		return h.run("clear tabstops", k, func() (bool, error) { return true, h.engine.ClearTabstops() })
	}
	return false
}

// run calls a feature. A failing feature is logged and treated as not
// having handled the key.
func (h *Handler) run(feature string, k Key, fn func() (bool, error)) bool {
	ok, err := fn()
	if err != nil {
		log.ErrorErr(log.CatKeys, feature+" failed", err, "key", k.String(), "view", h.view.ID())
		return false
	}
	if ok {
		log.Debug(log.CatKeys, feature, "key", k.String())
	}
	return ok
}

func (h *Handler) runSnippets(s *Settings, ctx *mathctx.Context, k Key) (bool, error) {
	if s.Snippets.Len() == 0 {
		return false, nil
	}

	cfg := s.matchConfig()
	enlarge := false
	for _, r := range ctx.Ranges {
		m, ok, err := s.Snippets.Match(ctx, k.Name, r, cfg)
		if err != nil {
			h.engine.Queue().Clear()
			return false, err
		}
		if !ok {
			continue
		}

		// The typed key only reaches the document for snippets that fire
		// on typed characters; pushing it keeps it in the undo history.
		trigger := ""
		if m.Snippet.Options.Automatic || m.Snippet.Options.Visual {
			trigger = k.Name
		}
		if err := h.engine.Queue().Push(expansion.NewChangeSpec(m.From, m.To, m.Replacement, trigger)); err != nil {
			continue
		}
		enlarge = enlarge || containsTrigger(m.Replacement, s.AutoEnlarge.Triggers)
	}

	ok, err := h.engine.Expand()
	if err != nil || !ok {
		return ok, err
	}
	if enlarge && s.AutoEnlarge.Enabled {
		h.run("auto-enlarge brackets", k, func() (bool, error) { return h.enlargeBrackets(s.AutoEnlarge.Triggers) })
	}
	return true, nil
}

// autoDeleteDollars deletes both signs of an empty inline equation around
// the cursor. The pair parses as the opening of display math, so the signs
// are checked instead of the mode.
func (h *Handler) autoDeleteDollars(st *state.State) (bool, error) {
	main := st.Selection.MainRange()
	doc := st.Doc.String()
	pos := main.Head
	if !main.Empty() || pos < 1 || pos >= len(doc) || doc[pos-1:pos+1] != "$$" {
		return false, nil
	}
	if (pos >= 2 && doc[pos-2] == '$') || (pos+1 < len(doc) && doc[pos+1] == '$') {
		return false, nil
	}

	changes, err := change.Of([]change.Spec{{From: pos - 1, To: pos + 1}}, len(doc))
	if err != nil {
		return false, err
	}
	return true, h.view.Dispatch(state.TransactionSpec{
		Changes:   &changes,
		Effects:   []state.Effect{tabstop.RemoveAllTabstops{}},
		UserEvent: state.UserEventDelete,
	})
}

func (h *Handler) setCursor(pos int) error {
	return h.view.SetSelection(state.NewSelection(state.Cursor(pos)))
}

func containsTrigger(s string, triggers []string) bool {
	for _, w := range triggers {
		if strings.Contains(s, `\`+w) {
			return true
		}
	}
	return false
}
