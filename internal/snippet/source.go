package snippet

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a snippet or variables source.
type Format string

// Supported source formats.
const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// RawSnippet is a snippet as written by the user.
type RawSnippet struct {
	Trigger              string     `yaml:"trigger" toml:"trigger"`
	Replacement          string     `yaml:"replacement,omitempty" toml:"replacement,omitempty"`
	ReplacementFn        string     `yaml:"replacement_fn,omitempty" toml:"replacement_fn,omitempty"`
	Options              string     `yaml:"options,omitempty" toml:"options,omitempty"`
	Flags                string     `yaml:"flags,omitempty" toml:"flags,omitempty"`
	Priority             int        `yaml:"priority,omitempty" toml:"priority,omitempty"`
	Description          string     `yaml:"description,omitempty" toml:"description,omitempty"`
	Version              int        `yaml:"version,omitempty" toml:"version,omitempty"`
	ExcludedEnvironments [][]string `yaml:"excluded_environments,omitempty" toml:"excluded_environments,omitempty"`
}

type tomlSnippets struct {
	Snippets []RawSnippet `toml:"snippets"`
}

// ParseSource decodes a list of raw snippets.
func ParseSource(data []byte, format Format) ([]RawSnippet, error) {
	switch format {
	case FormatYAML:
		var raws []RawSnippet
		if err := yaml.Unmarshal(data, &raws); err != nil {
			return nil, fmt.Errorf("parsing yaml snippets: %w", err)
		}
		return raws, nil
	case FormatTOML:
		var doc tomlSnippets
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing toml snippets: %w", err)
		}
		return doc.Snippets, nil
	case FormatJSON:
		return parseJSONSnippets(data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func parseJSONSnippets(data []byte) ([]RawSnippet, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("%w: invalid json", ErrInvalidSource)
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected an array of snippets", ErrInvalidSource)
	}

	var raws []RawSnippet
	var err error
	root.ForEach(func(key, value gjson.Result) bool {
		if !value.IsObject() {
			err = fmt.Errorf("%w: entry %d is not an object", ErrInvalidSource, key.Int())
			return false
		}
		raw := RawSnippet{
			Trigger:       value.Get("trigger").String(),
			Replacement:   value.Get("replacement").String(),
			ReplacementFn: value.Get("replacement_fn").String(),
			Options:       value.Get("options").String(),
			Flags:         value.Get("flags").String(),
			Priority:      int(value.Get("priority").Int()),
			Description:   value.Get("description").String(),
			Version:       int(value.Get("version").Int()),
		}
		if envs := value.Get("excluded_environments"); envs.Exists() {
			raw.ExcludedEnvironments = jsonPairs(envs)
		}
		raws = append(raws, raw)
		return true
	})
	return raws, err
}

// ParseEnvironments decodes a JSON list of [open, close] pairs.
func ParseEnvironments(src string) ([][]string, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	if !gjson.Valid(src) {
		return nil, fmt.Errorf("%w: invalid json", ErrInvalidEnv)
	}
	root := gjson.Parse(src)
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a list of pairs", ErrInvalidEnv)
	}
	return jsonPairs(root), nil
}

func jsonPairs(list gjson.Result) [][]string {
	var out [][]string
	for _, pair := range list.Array() {
		var strs []string
		for _, s := range pair.Array() {
			strs = append(strs, s.String())
		}
		out = append(out, strs)
	}
	return out
}

// ParseVariables decodes a map of snippet variables.
func ParseVariables(data []byte, format Format) (Variables, error) {
	vars := Variables{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &vars); err != nil {
			return nil, fmt.Errorf("parsing yaml variables: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &vars); err != nil {
			return nil, fmt.Errorf("parsing toml variables: %w", err)
		}
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("%w: invalid json", ErrInvalidVariable)
		}
		var err error
		gjson.ParseBytes(data).ForEach(func(key, value gjson.Result) bool {
			if value.Type != gjson.String {
				err = fmt.Errorf("%w: value of %s must be a string", ErrInvalidVariable, key.String())
				return false
			}
			vars[key.String()] = value.String()
			return true
		})
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err := vars.Validate(); err != nil {
		return nil, err
	}
	return vars, nil
}

// ReadSource reads and decodes a snippet file.
func ReadSource(path string) ([]RawSnippet, []byte, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, nil, fmt.Errorf("reading snippets: %w", err)
	}
	raws, err := ParseSource(data, format)
	return raws, data, err
}

// ReadVariables reads and decodes a variables file.
func ReadVariables(path string) (Variables, []byte, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from user config
	if err != nil {
		return nil, nil, fmt.Errorf("reading snippet variables: %w", err)
	}
	vars, err := ParseVariables(data, format)
	return vars, data, err
}
