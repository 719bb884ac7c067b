package snippet

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/log"
	"github.com/superle3/snippet-leaf/internal/mathctx"
)

// MatchConfig holds the settings the matcher depends on.
type MatchConfig struct {
	// TriggerKey expands non-automatic snippets: "Tab" or " ".
	TriggerKey              string
	WordDelimiters          string
	RemoveSnippetWhitespace bool
}

// Match is the first snippet that fired for one selection range.
type Match struct {
	Snippet     *Snippet
	From        int
	To          int
	Replacement string
}

// Match finds the first snippet, in priority order, that fires for key at
// rng. Errors from regex timeouts and replacement functions are returned
// as is.
func (s *Set) Match(ctx *mathctx.Context, key string, rng state.Range, cfg MatchConfig) (Match, bool, error) {
	if s == nil {
		return Match{}, false, nil
	}

	st := ctx.State
	from, to := rng.From(), rng.To()
	sel := st.SliceDoc(from, to)
	line := st.Doc.LineAt(to)
	lineText := st.SliceDoc(line.From, to)
	typed := utf8.RuneCountInString(key) == 1

	for _, sn := range s.Snippets {
		if !ShouldRunInMode(sn.Options.Mode, ctx.Mode) {
			continue
		}

		effective := lineText
		if sn.Options.Automatic || sn.Options.Visual {
			if !typed {
				continue
			}
			effective = lineText + key
		} else if key != cfg.TriggerKey {
			continue
		}

		if excluded(ctx, to, sn.ExcludedEnvironments) {
			continue
		}

		res, ok, err := sn.Process(effective, line.From, rng, sel)
		if err != nil {
			log.ErrorErr(log.CatSnippet, "snippet failed", err, "trigger", sn.Trigger)
			return Match{}, false, err
		}
		if !ok {
			continue
		}

		if sn.Options.OnWordBoundary && !onWordBoundary(st.Doc.String(), res.TriggerPos, to, cfg.WordDelimiters) {
			continue
		}

		replacement := res.Replacement
		if ctx.Mode.InlineMath && cfg.RemoveSnippetWhitespace {
			replacement = trimWhitespace(replacement)
		}
		log.Debug(log.CatSnippet, "snippet matched", "trigger", sn.Trigger, "from", res.TriggerPos, "to", to)
		return Match{Snippet: sn, From: res.TriggerPos, To: to, Replacement: replacement}, true, nil
	}
	return Match{}, false, nil
}

func excluded(ctx *mathctx.Context, pos int, envs []mathctx.Environment) bool {
	for _, env := range envs {
		if ctx.IsWithinEnvironment(pos, env) {
			return true
		}
	}
	return false
}

// onWordBoundary reports whether the characters before triggerPos and
// after to are delimiters. The document edges count as delimiters.
func onWordBoundary(doc string, triggerPos, to int, delimiters string) bool {
	delimiters = strings.ReplaceAll(delimiters, `\n`, "\n")

	prev, next := "", ""
	if triggerPos > 0 && triggerPos <= len(doc) {
		r, _ := utf8.DecodeLastRuneInString(doc[:triggerPos])
		prev = string(r)
	}
	if to >= 0 && to < len(doc) {
		r, _ := utf8.DecodeRuneInString(doc[to:])
		next = string(r)
	}
	return strings.Contains(delimiters, prev) && strings.Contains(delimiters, next)
}

// trimWhitespace drops trailing whitespace, or the space before a final
// tabstop such as " @0", so inline equations do not end in a space.
func trimWhitespace(s string) string {
	if strings.HasSuffix(s, " ") {
		return strings.TrimRightFunc(s, unicode.IsSpace)
	}
	if n := len(s); n >= 3 && s[n-3:n-1] == " @" && s[n-1] >= '0' && s[n-1] <= '9' {
		return s[:n-3] + s[n-2:]
	}
	return s
}
