package suite

import (
	"github.com/superle3/snippet-leaf/internal/mathctx"
	"github.com/superle3/snippet-leaf/internal/snippet"
)

// Settings is the fully resolved configuration the handler reads on every
// keystroke. A handler holds one snapshot at a time; reloading swaps it as
// a whole.
type Settings struct {
	SnippetsEnabled bool
	// SnippetsTrigger is the key expanding non-automatic snippets, "Tab"
	// or " ".
	SnippetsTrigger         string
	SuppressOnIME           bool
	RemoveSnippetWhitespace bool
	AutoDeleteDollars       bool
	WordDelimiters          string
	Snippets                *snippet.Set

	Autofraction    AutofractionSettings
	MatrixShortcuts MatrixSettings
	TaboutEnabled   bool
	AutoEnlarge     EnlargeSettings
}

// AutofractionSettings configures the "/" fraction shortcut.
type AutofractionSettings struct {
	Enabled       bool
	Symbol        string
	BreakingChars string
	ExcludedEnvs  []mathctx.Environment
}

// MatrixSettings configures Tab and Enter inside matrix-like environments.
type MatrixSettings struct {
	Enabled      bool
	Environments []string
}

// EnlargeSettings configures the \left ... \right rewrite.
type EnlargeSettings struct {
	Enabled  bool
	Triggers []string
}

// DefaultSettings returns the built-in settings with the given snippets.
func DefaultSettings(snippets *snippet.Set) Settings {
	return Settings{
		SnippetsEnabled:         true,
		SnippetsTrigger:         KeyTab,
		SuppressOnIME:           true,
		RemoveSnippetWhitespace: true,
		AutoDeleteDollars:       true,
		WordDelimiters:          `., +-\n	:;!?\/{}[]()=~$`,
		Snippets:                snippets,
		Autofraction: AutofractionSettings{
			Enabled:       true,
			Symbol:        `\frac`,
			BreakingChars: "+-=\t",
			ExcludedEnvs:  []mathctx.Environment{{Open: "^{", Close: "}"}, {Open: `\pu{`, Close: "}"}},
		},
		MatrixShortcuts: MatrixSettings{
			Enabled:      true,
			Environments: DefaultMatrixEnvironments(),
		},
		TaboutEnabled: true,
		AutoEnlarge: EnlargeSettings{
			Enabled:  true,
			Triggers: DefaultEnlargeTriggers(),
		},
	}
}

// DefaultMatrixEnvironments lists the environments with matrix shortcuts.
func DefaultMatrixEnvironments() []string {
	return []string{"pmatrix", "cases", "align", "gather", "bmatrix", "Bmatrix", "vmatrix", "Vmatrix", "array", "matrix"}
}

// DefaultEnlargeTriggers lists the commands that make brackets grow.
func DefaultEnlargeTriggers() []string {
	return []string{"sum", "int", "frac", "prod", "bigcup", "bigcap"}
}

func (s *Settings) matchConfig() snippet.MatchConfig {
	return snippet.MatchConfig{
		TriggerKey:              s.SnippetsTrigger,
		WordDelimiters:          s.WordDelimiters,
		RemoveSnippetWhitespace: s.RemoveSnippetWhitespace,
	}
}
