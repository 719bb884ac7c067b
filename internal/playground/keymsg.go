package playground

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/superle3/snippet-leaf/internal/suite"
)

// editorKeys translates a terminal key into editor keystrokes. Terminals do
// not report Shift-Enter, so Alt-Enter stands in for it. Keys the editor
// has no use for yield nil.
func editorKeys(msg tea.KeyMsg) []suite.Key {
	switch msg.Type {
	case tea.KeyRunes:
		if msg.Alt {
			return nil
		}
		keys := make([]suite.Key, len(msg.Runes))
		for i, r := range msg.Runes {
			keys[i] = suite.Key{Name: string(r)}
		}
		return keys
	case tea.KeySpace:
		return []suite.Key{{Name: suite.KeySpace}}
	case tea.KeyTab:
		return []suite.Key{{Name: suite.KeyTab}}
	case tea.KeyShiftTab:
		return []suite.Key{{Name: suite.KeyTab, Shift: true}}
	case tea.KeyEnter:
		return []suite.Key{{Name: suite.KeyEnter, Shift: msg.Alt}}
	case tea.KeyBackspace:
		return []suite.Key{{Name: suite.KeyBackspace}}
	case tea.KeyEsc:
		return []suite.Key{{Name: suite.KeyEscape}}
	case tea.KeyLeft:
		return []suite.Key{{Name: suite.KeyLeft}}
	case tea.KeyRight:
		return []suite.Key{{Name: suite.KeyRight}}
	case tea.KeyCtrlZ:
		return []suite.Key{{Name: "z", Ctrl: true}}
	case tea.KeyCtrlY:
		return []suite.Key{{Name: "y", Ctrl: true}}
	}
	return nil
}
