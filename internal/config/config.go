// Package config provides configuration types and defaults for snippetleaf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/snippet"
)

// Validation errors.
var (
	ErrInvalidTrigger      = errors.New("invalid snippets_trigger")
	ErrInvalidSymbol       = errors.New("invalid autofraction.symbol")
	ErrInvalidVersion      = errors.New("invalid snippet_version")
	ErrInvalidEnvironments = errors.New("invalid autofraction.excluded_environments")
	ErrInvalidHistory      = errors.New("invalid history.depth")
	ErrInvalidDebounce     = errors.New("invalid watch.debounce")
)

// Trigger key names accepted by snippets_trigger.
const (
	TriggerTab   = "Tab"
	TriggerSpace = "Space"
)

// Config holds all configuration options for snippetleaf.
type Config struct {
	SnippetsEnabled         bool   `mapstructure:"snippets_enabled"`
	SnippetsTrigger         string `mapstructure:"snippets_trigger"` // "Tab" (default) or "Space"
	SuppressOnIME           bool   `mapstructure:"suppress_snippet_trigger_on_ime"`
	RemoveSnippetWhitespace bool   `mapstructure:"remove_snippet_whitespace"`
	AutoDeleteDollars       bool   `mapstructure:"auto_delete_dollars"`
	WordDelimiters          string `mapstructure:"word_delimiters"`

	// SnippetsFile replaces the built-in snippets when set.
	SnippetsFile         string `mapstructure:"snippets_file"`
	SnippetVariablesFile string `mapstructure:"snippet_variables_file"`
	// SnippetVersion applies to snippets that do not set their own.
	SnippetVersion int `mapstructure:"snippet_version"`

	Autofraction        AutofractionConfig `mapstructure:"autofraction"`
	MatrixShortcuts     MatrixConfig       `mapstructure:"matrix_shortcuts"`
	Tabout              TaboutConfig       `mapstructure:"tabout"`
	AutoEnlargeBrackets EnlargeConfig      `mapstructure:"auto_enlarge_brackets"`
	History             HistoryConfig      `mapstructure:"history"`
	Watch               WatchConfig        `mapstructure:"watch"`
}

// AutofractionConfig configures the "/" fraction shortcut.
type AutofractionConfig struct {
	Enabled       bool   `mapstructure:"enabled"`
	Symbol        string `mapstructure:"symbol"`
	BreakingChars string `mapstructure:"breaking_chars"`
	// ExcludedEnvironments is a JSON list of [open, close] pairs, for
	// example [["^{", "}"]].
	ExcludedEnvironments string `mapstructure:"excluded_environments"`
}

// MatrixConfig configures Tab and Enter inside matrix environments.
type MatrixConfig struct {
	Enabled      bool     `mapstructure:"enabled"`
	Environments []string `mapstructure:"environments"`
}

// TaboutConfig configures jumping out of brackets and equations with Tab.
type TaboutConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// EnlargeConfig configures the \left ... \right rewrite.
type EnlargeConfig struct {
	Enabled  bool     `mapstructure:"enabled"`
	Triggers []string `mapstructure:"triggers"`
}

// HistoryConfig bounds the undo history.
type HistoryConfig struct {
	Depth int `mapstructure:"depth"`
}

// WatchConfig configures reloading of changed snippet and config files.
type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce"`
}

// DefaultExcludedEnvironments keeps "/" literal in superscripts and \pu.
const DefaultExcludedEnvironments = `[["^{", "}"], ["\\pu{", "}"]]`

// DefaultWordDelimiters are the characters that end a word for snippets
// with the w option.
const DefaultWordDelimiters = "., +-\\n\t:;!?\\/{}[]()=~$"

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		SnippetsEnabled:         true,
		SnippetsTrigger:         TriggerTab,
		SuppressOnIME:           true,
		RemoveSnippetWhitespace: true,
		AutoDeleteDollars:       true,
		WordDelimiters:          DefaultWordDelimiters,
		SnippetVersion:          2,
		Autofraction: AutofractionConfig{
			Enabled:              true,
			Symbol:               `\frac`,
			BreakingChars:        "+-=\t",
			ExcludedEnvironments: DefaultExcludedEnvironments,
		},
		MatrixShortcuts: MatrixConfig{
			Enabled:      true,
			Environments: []string{"pmatrix", "cases", "align", "gather", "bmatrix", "Bmatrix", "vmatrix", "Vmatrix", "array", "matrix"},
		},
		Tabout: TaboutConfig{Enabled: true},
		AutoEnlargeBrackets: EnlargeConfig{
			Enabled:  true,
			Triggers: []string{"sum", "int", "frac", "prod", "bigcup", "bigcap"},
		},
		History: HistoryConfig{Depth: 200},
		Watch:   WatchConfig{Debounce: 300 * time.Millisecond},
	}
}

// Validate checks the configuration for errors. Empty values that have a
// default are accepted.
func (c Config) Validate() error {
	switch c.SnippetsTrigger {
	case "", TriggerTab, TriggerSpace:
	default:
		return fmt.Errorf("%w: must be %q or %q, got %q", ErrInvalidTrigger, TriggerTab, TriggerSpace, c.SnippetsTrigger)
	}
	if c.Autofraction.Enabled && c.Autofraction.Symbol == "" {
		return fmt.Errorf("%w: must not be empty", ErrInvalidSymbol)
	}
	if c.SnippetVersion != 1 && c.SnippetVersion != 2 {
		return fmt.Errorf("%w: must be 1 or 2, got %d", ErrInvalidVersion, c.SnippetVersion)
	}
	if _, err := ExcludedEnvironments(c.Autofraction.ExcludedEnvironments); err != nil {
		return err
	}
	if c.History.Depth < 0 {
		return fmt.Errorf("%w: must not be negative, got %d", ErrInvalidHistory, c.History.Depth)
	}
	if c.Watch.Debounce < 0 {
		return fmt.Errorf("%w: must not be negative, got %s", ErrInvalidDebounce, c.Watch.Debounce)
	}
	return nil
}

// ExcludedEnvironments decodes the JSON list of [open, close] pairs.
func ExcludedEnvironments(src string) ([][2]string, error) {
	pairs, err := snippet.ParseEnvironments(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEnvironments, err)
	}
	out := make([][2]string, 0, len(pairs))
	for i, p := range pairs {
		if len(p) != 2 || p[0] == "" {
			return nil, fmt.Errorf("%w: entry %d must be a non-empty [open, close] pair", ErrInvalidEnvironments, i)
		}
		out = append(out, [2]string{p[0], p[1]})
	}
	return out, nil
}

// DefaultConfigTemplate returns the default config as a YAML string with comments.
func DefaultConfigTemplate() string {
	return `# snippetleaf configuration

# Snippets
snippets_enabled: true
snippets_trigger: Tab                  # key expanding non-automatic snippets: "Tab" or "Space"
suppress_snippet_trigger_on_ime: true  # do not expand while an input method is composing
remove_snippet_whitespace: true        # trim trailing spaces of snippets in inline math
auto_delete_dollars: true              # backspace inside an empty $$ deletes both dollars
# snippets_file: ~/.config/snippetleaf/snippets.yaml   # .yaml, .json or .toml; replaces the built-in snippets
# snippet_variables_file: ~/.config/snippetleaf/variables.yaml
snippet_version: 2                     # replacement syntax of snippets without a version

# Typing / after a term in math turns it into a fraction
autofraction:
  enabled: true
  symbol: \frac
  breaking_chars: "+-=\t"
  excluded_environments: '[["^{", "}"], ["\\pu{", "}"]]'

# Tab inserts " & " and Enter starts a new row in these environments
matrix_shortcuts:
  enabled: true
  environments: [pmatrix, cases, align, gather, bmatrix, Bmatrix, vmatrix, Vmatrix, array, matrix]

# Tab jumps past the next closing bracket or out of the equation
tabout:
  enabled: true

# Brackets around these commands become \left( ... \right)
auto_enlarge_brackets:
  enabled: true
  triggers: [sum, int, frac, prod, bigcup, bigcap]

history:
  depth: 200

# Delay before reloading changed snippet and config files
watch:
  debounce: 300ms
`
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to create config directory", err, "dir", dir)
		return fmt.Errorf("creating config directory: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(DefaultConfigTemplate()), 0o600); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return fmt.Errorf("writing config file: %w", err)
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}
