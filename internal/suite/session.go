package suite

import (
	"fmt"
	"strings"

	"github.com/superle3/snippet-leaf/internal/editor"
	"github.com/superle3/snippet-leaf/internal/editor/state"
)

// Session is an editor view driven by keystrokes: keys go to the handler
// first and fall back to plain typing.
type Session struct {
	view    *editor.View
	handler *Handler
}

// NewSession opens doc with the given selection.
func NewSession(doc string, sel state.Selection, settings Settings, opts ...editor.Option) *Session {
	opts = append(opts, editor.WithSelection(sel))
	v := editor.New(doc, 0, opts...)
	return &Session{view: v, handler: NewHandler(v, settings)}
}

// Open opens a document written with cursor markers, see ParseDocument.
func Open(marked string, settings Settings, opts ...editor.Option) (*Session, error) {
	doc, sel, err := ParseDocument(marked)
	if err != nil {
		return nil, err
	}
	return NewSession(doc, sel, settings, opts...), nil
}

// View returns the editor view.
func (s *Session) View() *editor.View { return s.view }

// Handler returns the keystroke handler.
func (s *Session) Handler() *Handler { return s.handler }

// Press handles one keystroke.
func (s *Session) Press(k Key) error {
	if s.handler.HandleKeydown(k) {
		return nil
	}
	if err := s.defaultKey(k); err != nil {
		return fmt.Errorf("typing %s: %w", k, err)
	}
	return nil
}

// Type presses each key in order, stopping at the first failure.
func (s *Session) Type(keys ...Key) error {
	for _, k := range keys {
		if err := s.Press(k); err != nil {
			return err
		}
	}
	return nil
}

// Run parses a key script and presses its keys.
func (s *Session) Run(script string) error {
	keys, err := ParseKeys(script)
	if err != nil {
		return err
	}
	return s.Type(keys...)
}

// String renders the document with cursor markers.
func (s *Session) String() string {
	return FormatDocument(s.view.State())
}

// Tabstops renders the active tabstop groups, the current one first, as
// "number:from-to" lists.
func (s *Session) Tabstops() []string {
	groups := s.handler.Tabstops()
	out := make([]string, len(groups))
	for i, g := range groups {
		var b strings.Builder
		fmt.Fprintf(&b, "%d:", g.Number)
		for j, r := range g.Ranges() {
			if j > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%d-%d", r.From(), r.To())
		}
		out[i] = b.String()
	}
	return out
}

func (s *Session) defaultKey(k Key) error {
	if k.Ctrl {
		switch {
		case k.Name == "z" && !k.Shift:
			s.view.Undo()
		case k.Name == "y", k.Name == "z" && k.Shift, k.Name == "Z":
			s.view.Redo()
		}
		return nil
	}
	if k.Char() {
		return s.view.InsertText(k.Name)
	}

	switch k.Name {
	case KeyTab:
		if k.Shift {
			return nil
		}
		return s.view.InsertText("\t")
	case KeyEnter:
		return s.view.InsertNewline()
	case KeyBackspace:
		return s.view.DeleteBackward()
	case KeyLeft:
		return s.view.MoveCursor(-1)
	case KeyRight:
		return s.view.MoveCursor(1)
	case KeyUndo:
		s.view.Undo()
	case KeyRedo:
		s.view.Redo()
	}
	return nil
}
