package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/mathctx"
	"github.com/superle3/snippet-leaf/internal/snippet"
	"github.com/superle3/snippet-leaf/internal/suite"
)

// ExpandPath resolves a leading "~/" against the home directory.
func ExpandPath(path string) string {
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

// SnippetSource reads the configured snippet and variables files. Without
// a snippets file the built-in snippets are used.
func SnippetSource(cfg Config) (snippet.Source, error) {
	vars := snippet.DefaultVariables()
	if cfg.SnippetVariablesFile != "" {
		path := ExpandPath(cfg.SnippetVariablesFile)
		format, err := snippet.FormatFromPath(path)
		if err != nil {
			return snippet.Source{}, err
		}
		data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
		if err != nil {
			return snippet.Source{}, fmt.Errorf("reading snippet variables: %w", err)
		}
		custom, err := snippet.ParseVariables(data, format)
		if err != nil {
			return snippet.Source{}, fmt.Errorf("%s: %w", path, err)
		}
		vars = vars.Merge(custom)
	}

	if cfg.SnippetsFile == "" {
		return snippet.Source{Data: snippet.DefaultSource(), Format: snippet.FormatYAML, Variables: vars, Version: 2}, nil
	}

	path := ExpandPath(cfg.SnippetsFile)
	format, err := snippet.FormatFromPath(path)
	if err != nil {
		return snippet.Source{}, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		return snippet.Source{}, fmt.Errorf("reading snippets: %w", err)
	}
	version := cfg.SnippetVersion
	if version == 0 {
		version = 2
	}
	return snippet.Source{Data: data, Format: format, Variables: vars, Version: version}, nil
}

// Load compiles the configured snippets through loader and builds the
// runtime settings. Definition errors of single snippets are logged and
// returned in Loaded.Err; the settings are usable regardless. The caller
// closes settings.Snippets when done with it.
func Load(ctx context.Context, cfg Config, loader *snippet.Loader) (suite.Settings, *snippet.Loaded, error) {
	if err := cfg.Validate(); err != nil {
		return suite.Settings{}, nil, err
	}
	src, err := SnippetSource(cfg)
	if err != nil {
		return suite.Settings{}, nil, err
	}
	loaded, err := loader.Load(ctx, src)
	if err != nil {
		return suite.Settings{}, nil, fmt.Errorf("loading snippets: %w", err)
	}
	if loaded.Err != nil {
		log.Warn(log.CatConfig, "some snippets were skipped", "error", loaded.Err.Error())
	}
	settings, err := Snapshot(cfg, loaded.Set)
	if err != nil {
		loaded.Set.Close()
		return suite.Settings{}, nil, err
	}
	return settings, loaded, nil
}

// Snapshot builds the settings the keystroke handler reads from cfg and a
// compiled snippet set.
func Snapshot(cfg Config, set *snippet.Set) (suite.Settings, error) {
	s := suite.DefaultSettings(set)

	s.SnippetsEnabled = cfg.SnippetsEnabled
	switch cfg.SnippetsTrigger {
	case TriggerSpace:
		s.SnippetsTrigger = suite.KeySpace
	case TriggerTab, "":
		s.SnippetsTrigger = suite.KeyTab
	default:
		return suite.Settings{}, fmt.Errorf("%w: %q", ErrInvalidTrigger, cfg.SnippetsTrigger)
	}
	s.SuppressOnIME = cfg.SuppressOnIME
	s.RemoveSnippetWhitespace = cfg.RemoveSnippetWhitespace
	s.AutoDeleteDollars = cfg.AutoDeleteDollars
	if cfg.WordDelimiters != "" {
		s.WordDelimiters = cfg.WordDelimiters
	}

	envs, err := ExcludedEnvironments(cfg.Autofraction.ExcludedEnvironments)
	if err != nil {
		return suite.Settings{}, err
	}
	s.Autofraction.Enabled = cfg.Autofraction.Enabled
	if cfg.Autofraction.Symbol != "" {
		s.Autofraction.Symbol = cfg.Autofraction.Symbol
	}
	s.Autofraction.BreakingChars = cfg.Autofraction.BreakingChars
	s.Autofraction.ExcludedEnvs = make([]mathctx.Environment, len(envs))
	for i, e := range envs {
		s.Autofraction.ExcludedEnvs[i] = mathctx.Environment{Open: e[0], Close: e[1]}
	}

	s.MatrixShortcuts.Enabled = cfg.MatrixShortcuts.Enabled
	if cfg.MatrixShortcuts.Environments != nil {
		s.MatrixShortcuts.Environments = cfg.MatrixShortcuts.Environments
	}
	s.TaboutEnabled = cfg.Tabout.Enabled
	s.AutoEnlarge.Enabled = cfg.AutoEnlargeBrackets.Enabled
	if cfg.AutoEnlargeBrackets.Triggers != nil {
		s.AutoEnlarge.Triggers = cfg.AutoEnlargeBrackets.Triggers
	}
	return s, nil
}
