package snippet

import (
	_ "embed"
	"fmt"
)

//go:embed defaults.yaml
var defaultSource []byte

// DefaultSource returns the YAML source of the built-in snippets.
func DefaultSource() []byte { return defaultSource }

// Defaults compiles the built-in snippets.
func Defaults(vars Variables) (*Set, error) {
	raws, err := ParseSource(defaultSource, FormatYAML)
	if err != nil {
		return nil, fmt.Errorf("parsing built-in snippets: %w", err)
	}
	return ParseAll(raws, vars, 2)
}
