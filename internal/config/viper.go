package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// SetDefaults registers the default of every key on v.
func SetDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("snippets_enabled", d.SnippetsEnabled)
	v.SetDefault("snippets_trigger", d.SnippetsTrigger)
	v.SetDefault("suppress_snippet_trigger_on_ime", d.SuppressOnIME)
	v.SetDefault("remove_snippet_whitespace", d.RemoveSnippetWhitespace)
	v.SetDefault("auto_delete_dollars", d.AutoDeleteDollars)
	v.SetDefault("word_delimiters", d.WordDelimiters)
	v.SetDefault("snippets_file", d.SnippetsFile)
	v.SetDefault("snippet_variables_file", d.SnippetVariablesFile)
	v.SetDefault("snippet_version", d.SnippetVersion)
	v.SetDefault("autofraction.enabled", d.Autofraction.Enabled)
	v.SetDefault("autofraction.symbol", d.Autofraction.Symbol)
	v.SetDefault("autofraction.breaking_chars", d.Autofraction.BreakingChars)
	v.SetDefault("autofraction.excluded_environments", d.Autofraction.ExcludedEnvironments)
	v.SetDefault("matrix_shortcuts.enabled", d.MatrixShortcuts.Enabled)
	v.SetDefault("matrix_shortcuts.environments", d.MatrixShortcuts.Environments)
	v.SetDefault("tabout.enabled", d.Tabout.Enabled)
	v.SetDefault("auto_enlarge_brackets.enabled", d.AutoEnlargeBrackets.Enabled)
	v.SetDefault("auto_enlarge_brackets.triggers", d.AutoEnlargeBrackets.Triggers)
	v.SetDefault("history.depth", d.History.Depth)
	v.SetDefault("watch.debounce", d.Watch.Debounce)
}

// Read loads the config file at path on top of the defaults. It is used to
// reload a changed file without touching the global viper instance.
func Read(path string) (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Unmarshal(v)
}

// Unmarshal decodes and validates the settings held by v.
func Unmarshal(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
