package snippet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/editor/text"
	"github.com/superle3/snippet-leaf/internal/mathctx"
)

var testMatchConfig = MatchConfig{
	TriggerKey:              "Tab",
	WordDelimiters:          `., +-\n	:;!?\/{}[]()=~$`,
	RemoveSnippetWhitespace: true,
}

func mustSet(t *testing.T, raws ...RawSnippet) *Set {
	t.Helper()
	set, err := ParseAll(raws, DefaultVariables(), 2)
	require.NoError(t, err)
	t.Cleanup(set.Close)
	return set
}

// matchAt runs the matcher with the cursor at the "|" in doc.
func matchAt(t *testing.T, set *Set, doc, key string) (Match, bool) {
	t.Helper()
	pos := strings.Index(doc, "|")
	require.GreaterOrEqual(t, pos, 0, "missing cursor marker")
	st := state.New(doc[:pos]+doc[pos+1:], pos)
	m, ok, err := set.Match(mathctx.FromState(st), key, st.Selection.MainRange(), testMatchConfig)
	require.NoError(t, err)
	return m, ok
}

func TestMatch_Automatic(t *testing.T) {
	set := mustSet(t, RawSnippet{Trigger: "//", Replacement: `\frac{@1}{@2}@0`, Options: "mA"})

	m, ok := matchAt(t, set, "$a+/|$", "/")
	require.True(t, ok)
	require.Equal(t, 3, m.From)
	require.Equal(t, 4, m.To)
	require.Equal(t, `\frac{@1}{@2}@0`, m.Replacement)

	_, ok = matchAt(t, set, "a+/|", "/")
	require.False(t, ok, "math snippet in text")

	_, ok = matchAt(t, set, "$a+//|$", "Tab")
	require.False(t, ok, "automatic snippets fire on typed characters only")
}

func TestMatch_TriggerKey(t *testing.T) {
	set := mustSet(t, RawSnippet{Trigger: "sq", Replacement: `\sqrt{ @1 } @0`, Options: "m"})

	m, ok := matchAt(t, set, "$sq|$", "Tab")
	require.True(t, ok)
	require.Equal(t, 1, m.From)
	require.Equal(t, 3, m.To)
	require.Equal(t, `\sqrt{ @1 }@0`, m.Replacement, "whitespace trimmed in inline math")

	m, ok = matchAt(t, set, "$$sq|$$", "Tab")
	require.True(t, ok)
	require.Equal(t, `\sqrt{ @1 } @0`, m.Replacement)

	_, ok = matchAt(t, set, "$sq|$", "q")
	require.False(t, ok)
	_, ok = matchAt(t, set, "$sq|$", " ")
	require.False(t, ok)
}

func TestMatch_Priority(t *testing.T) {
	set := mustSet(t,
		RawSnippet{Trigger: "ab", Replacement: "low", Options: "m"},
		RawSnippet{Trigger: "ab", Replacement: "high", Options: "m", Priority: 3},
	)

	m, ok := matchAt(t, set, "$ab|$", "Tab")
	require.True(t, ok)
	require.Equal(t, "high", m.Replacement)
}

func TestMatch_WordBoundary(t *testing.T) {
	set := mustSet(t, RawSnippet{Trigger: "in", Replacement: `\in`, Options: "mw"})

	m, ok := matchAt(t, set, "$x in|$", "Tab")
	require.True(t, ok)
	require.Equal(t, 3, m.From)

	_, ok = matchAt(t, set, "$xin|$", "Tab")
	require.False(t, ok)
}

func TestMatch_ExcludedEnvironment(t *testing.T) {
	raw := RawSnippet{Trigger: "//", Replacement: `\frac{@1}{@2}@0`, Options: "mA"}

	m, ok := matchAt(t, mustSet(t, raw), "$x^{a/|}$", "/")
	require.True(t, ok)
	require.Equal(t, 5, m.From)

	raw.ExcludedEnvironments = [][]string{{"^{", "}"}}
	_, ok = matchAt(t, mustSet(t, raw), "$x^{a/|}$", "/")
	require.False(t, ok)
}

func TestMatch_TextArgument(t *testing.T) {
	_, ok := matchAt(t, mustSet(t, RawSnippet{Trigger: "ab", Replacement: "x", Options: "m"}), `$$\text{ab|}$$`, "Tab")
	require.False(t, ok)

	_, ok = matchAt(t, mustSet(t, RawSnippet{Trigger: "ab", Replacement: "x", Options: "mt"}), `$$\text{ab|}$$`, "Tab")
	require.True(t, ok)
}

func TestMatch_Visual(t *testing.T) {
	set := mustSet(t, RawSnippet{Trigger: "U", Replacement: `\underbrace{ @{VISUAL} }_{ @1 }@0`, Options: "mv"})
	st := &state.State{Doc: text.New("$x+y$"), Selection: state.NewSelection(state.Span(1, 4))}

	m, ok, err := set.Match(mathctx.FromState(st), "U", st.Selection.MainRange(), testMatchConfig)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Match{Snippet: set.Snippets[0], From: 1, To: 4, Replacement: `\underbrace{ x+y }_{ @1 }@0`}, m)
}

func TestMatch_FunctionError(t *testing.T) {
	set := mustSet(t, RawSnippet{Trigger: "ab", ReplacementFn: `function(t) error("boom") end`, Options: "m"})
	st := state.New("$ab$", 3)

	_, ok, err := set.Match(mathctx.FromState(st), "Tab", st.Selection.MainRange(), testMatchConfig)
	require.ErrorIs(t, err, ErrReplacementFailed)
	require.False(t, ok)
}

func TestMatch_NilSet(t *testing.T) {
	var set *Set
	st := state.New("ab", 2)
	_, ok, err := set.Match(mathctx.FromState(st), "Tab", st.Selection.MainRange(), testMatchConfig)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTrimWhitespace(t *testing.T) {
	tests := map[string]string{
		"a ":    "a",
		"a \t":  "a \t",
		"a\t ":  "a",
		`x @0`:  `x@0`,
		`x @1`:  `x@1`,
		"x":     "x",
		"@0":    "@0",
		" @12":  " @12",
		`\in`:   `\in`,
		`a }@0`: `a }@0`,
	}
	for in, want := range tests {
		require.Equal(t, want, trimWhitespace(in), in)
	}
}

func TestOnWordBoundary(t *testing.T) {
	require.True(t, onWordBoundary("a b", 2, 3, " "))
	require.True(t, onWordBoundary("x\ny", 2, 3, `\n`))
	require.True(t, onWordBoundary("ab", 0, 2, ""))
	require.False(t, onWordBoundary("ab", 1, 2, " "))
	require.False(t, onWordBoundary("a bc", 2, 3, " "))
}
