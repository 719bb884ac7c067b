package playground

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/superle3/snippet-leaf/internal/tabstop"
)

// Colors used by the playground.
var (
	TextMutedColor     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	BorderColor        = lipgloss.AdaptiveColor{Light: "#D1D5DB", Dark: "#4B5563"}
	TitleColor         = lipgloss.AdaptiveColor{Light: "#7C3AED", Dark: "#A78BFA"}
	ErrorColor         = lipgloss.AdaptiveColor{Light: "#DC2626", Dark: "#F87171"}
	SelectionBackColor = lipgloss.AdaptiveColor{Light: "#BFDBFE", Dark: "#1E3A8A"}
)

// TabstopColors holds one background per tabstop palette index.
var TabstopColors = [tabstop.Colors]lipgloss.AdaptiveColor{
	{Light: "#FDE68A", Dark: "#854D0E"},
	{Light: "#A7F3D0", Dark: "#065F46"},
	{Light: "#FBCFE8", Dark: "#9D174D"},
}

// Styles holds the rendering styles of the editor pane.
type Styles struct {
	Cursor    lipgloss.Style
	Selection lipgloss.Style
	Tabstops  [tabstop.Colors]lipgloss.Style
	Title     lipgloss.Style
	Status    lipgloss.Style
	Error     lipgloss.Style
	Pane      lipgloss.Style
	LogLine   lipgloss.Style
}

// DefaultStyles returns the default playground styles.
func DefaultStyles() Styles {
	s := Styles{
		Cursor:    lipgloss.NewStyle().Reverse(true),
		Selection: lipgloss.NewStyle().Background(SelectionBackColor),
		Title:     lipgloss.NewStyle().Bold(true).Foreground(TitleColor).PaddingLeft(1),
		Status:    lipgloss.NewStyle().Foreground(TextMutedColor).PaddingLeft(1),
		Error:     lipgloss.NewStyle().Foreground(ErrorColor).PaddingLeft(1),
		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor),
		LogLine: lipgloss.NewStyle().Foreground(TextMutedColor),
	}
	for i, c := range TabstopColors {
		s.Tabstops[i] = lipgloss.NewStyle().Background(c)
	}
	return s
}
