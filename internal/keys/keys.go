// Package keys contains keybinding definitions.
package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the playground keybindings. Every other key goes to the
// editor.
type KeyMap struct {
	// Editing, shown in help only; the editor handles these itself.
	Trigger key.Binding
	Undo    key.Binding
	Redo    key.Binding
	Clear   key.Binding

	// Settings
	ToggleSnippets     key.Binding
	ToggleAutofraction key.Binding
	ToggleTrigger      key.Binding

	// General
	Reset key.Binding
	Logs  key.Binding
	Help  key.Binding
	Quit  key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Trigger: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "expand / next tabstop"),
		),
		Undo: key.NewBinding(
			key.WithKeys("ctrl+z"),
			key.WithHelp("ctrl+z", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+y"),
			key.WithHelp("ctrl+y", "redo"),
		),
		Clear: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear tabstops"),
		),

		ToggleSnippets: key.NewBinding(
			key.WithKeys("f2"),
			key.WithHelp("f2", "toggle snippets"),
		),
		ToggleAutofraction: key.NewBinding(
			key.WithKeys("f3"),
			key.WithHelp("f3", "toggle autofraction"),
		),
		ToggleTrigger: key.NewBinding(
			key.WithKeys("f4"),
			key.WithHelp("f4", "tab/space trigger"),
		),

		Reset: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reset document"),
		),
		Logs: key.NewBinding(
			key.WithKeys("ctrl+l"),
			key.WithHelp("ctrl+l", "toggle logs"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp returns keybindings for the short help view.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Logs, k.Quit}
}

// FullHelp returns keybindings for the full help view.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Trigger, k.Undo, k.Redo, k.Clear},                      // Editing
		{k.ToggleSnippets, k.ToggleAutofraction, k.ToggleTrigger}, // Settings
		{k.Reset, k.Logs, k.Help, k.Quit},                         // General
	}
}
