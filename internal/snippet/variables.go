package snippet

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Variables map "${NAME}" placeholders to regex fragments that are
// substituted into regex triggers.
type Variables map[string]string

// DefaultVariables returns the built-in variables.
func DefaultVariables() Variables {
	return Variables{
		"${GREEK}":        "alpha|beta|gamma|Gamma|delta|Delta|epsilon|varepsilon|zeta|eta|theta|vartheta|Theta|iota|kappa|lambda|Lambda|mu|nu|xi|omicron|pi|rho|varrho|sigma|Sigma|tau|upsilon|Upsilon|phi|varphi|Phi|chi|psi|omega|Omega",
		"${SYMBOL}":       "parallel|perp|partial|nabla|hbar|ell|infty|oplus|ominus|otimes|oslash|square|star|dagger|vee|wedge|subseteq|subset|supseteq|supset|emptyset|exists|nexists|forall|implies|impliedby|iff|setminus|neg|lor|land|bigcup|bigcap|cdot|times|simeq|approx",
		"${MORE_SYMBOLS}": "leq|geq|neq|gg|ll|equiv|sim|propto|rightarrow|leftarrow|Rightarrow|Leftarrow|leftrightarrow|to|mapsto|cap|cup|in|sum|prod|exp|ln|log|det|dots|vdots|ddots|pm|mp|int|iint|iiint|oint",
	}
}

// Validate checks that every key has the "${NAME}" form.
func (v Variables) Validate() error {
	for k := range v {
		if !strings.HasPrefix(k, "${") || !strings.HasSuffix(k, "}") || len(k) < 4 {
			return fmt.Errorf("%w: key %q must be enclosed in ${}", ErrInvalidVariable, k)
		}
	}
	return nil
}

// Expand substitutes every variable in s. Longer keys are replaced first
// so that one key being a prefix of another does not matter.
func (v Variables) Expand(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	keys := slices.SortedFunc(maps.Keys(v), func(a, b string) int {
		if len(a) != len(b) {
			return len(b) - len(a)
		}
		return strings.Compare(a, b)
	})
	for _, k := range keys {
		s = strings.ReplaceAll(s, k, v[k])
	}
	return s
}

// Merge returns a copy of v overlaid with other.
func (v Variables) Merge(other Variables) Variables {
	out := make(Variables, len(v)+len(other))
	maps.Copy(out, v)
	maps.Copy(out, other)
	return out
}
