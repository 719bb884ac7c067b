package suite

import (
	"regexp"
	"strings"

	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/expansion"
	"github.com/superle3/snippet-leaf/internal/mathctx"
	"github.com/superle3/snippet-leaf/internal/snippet"
)

// A Greek letter command followed by a space is one numerator token, so
// "\alpha x/" divides "\alpha x" and not just "x".
var greekSpace = regexp.MustCompile(`(alpha|beta|gamma|Gamma|delta|Delta|epsilon|varepsilon|zeta|eta|theta|Theta|iota|kappa|lambda|Lambda|mu|nu|omicron|xi|Xi|pi|Pi|rho|sigma|Sigma|tau|upsilon|Upsilon|varphi|phi|Phi|chi|psi|Psi|omega|Omega) ([^ ])`)

// autofraction replaces the token before each cursor, or each selection,
// with a fraction whose denominator is the next tabstop.
func (h *Handler) autofraction(s *Settings, ctx *mathctx.Context) (bool, error) {
	for _, r := range ctx.Ranges {
		h.queueFraction(s, ctx, r)
	}

	ok, err := h.engine.Expand()
	if err != nil || !ok {
		return ok, err
	}
	if s.AutoEnlarge.Enabled {
		h.run("auto-enlarge brackets", Key{Name: "/"}, func() (bool, error) { return h.enlargeBrackets(s.AutoEnlarge.Triggers) })
	}
	return true, nil
}

func (h *Handler) queueFraction(s *Settings, ctx *mathctx.Context, r state.Range) bool {
	from, to := r.From(), r.To()
	for _, env := range s.Autofraction.ExcludedEnvs {
		if ctx.IsWithinEnvironment(to, env) {
			return false
		}
	}

	bounds, ok := ctx.Bounds(ctx.Pos)
	if !ok {
		return false
	}
	start := from
	if r.Empty() {
		if start, ok = numeratorStart(ctx.State.SliceDoc(0, to), bounds.Start, s.Autofraction.BreakingChars); !ok {
			return false
		}
	}
	if start == to {
		return false
	}

	num := ctx.State.SliceDoc(start, to)
	if strings.HasPrefix(num, "(") && strings.HasSuffix(num, ")") &&
		mathctx.FindMatchingBracket(num, 0, "(", ")", false) == len(num)-1 {
		num = num[1 : len(num)-1]
	}

	replacement := s.Autofraction.Symbol + "{" + snippet.EscapeLiteral(num) + "}{@1}@0"
	return h.engine.Queue().Push(expansion.NewChangeSpec(start, to, replacement, "/")) == nil
}

// numeratorStart scans text backwards from its end to the start of the
// numerator: the first space, opening delimiter or breaking character not
// inside brackets, or the equation start. It fails on an unbalanced
// closing bracket.
func numeratorStart(text string, eqStart int, breaking string) (int, bool) {
	text = greekSpace.ReplaceAllString(text, "${1}#${2}")
	stops := " $([{\n" + breaking

	for i := len(text) - 1; i >= eqStart; i-- {
		c := text[i]
		if closing := string(c); isCloseBracket(closing) {
			j := mathctx.FindMatchingBracket(text, i, mathctx.OpenBracket(closing), closing, true)
			if j == -1 {
				return 0, false
			}
			i = j
			if i < eqStart {
				return eqStart, true
			}
		}
		if strings.IndexByte(stops, c) >= 0 {
			return i + 1, true
		}
	}
	return eqStart, true
}

func isCloseBracket(s string) bool {
	return s == ")" || s == "]" || s == "}"
}
