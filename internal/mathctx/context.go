// Package mathctx classifies the cursor position of an editor state as
// text, math or code and answers boundary questions about the surrounding
// equation.
package mathctx

import (
	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/mathtree"
)

// Mode is the context a position is in. Fields are independent.
type Mode struct {
	Text       bool
	InlineMath bool
	BlockMath  bool
	CodeMath   bool
	Code       bool
	TextEnv    bool
}

// InMath reports whether the position is inside any equation.
func (m Mode) InMath() bool { return m.InlineMath || m.BlockMath || m.CodeMath }

// StrictlyInMath reports math that is not inside a text argument.
func (m Mode) StrictlyInMath() bool { return m.InMath() && !m.TextEnv }

// Any reports whether any flag is set.
func (m Mode) Any() bool {
	return m.Text || m.InlineMath || m.BlockMath || m.CodeMath || m.Code || m.TextEnv
}

// Invert flips every flag.
func (m Mode) Invert() Mode {
	return Mode{
		Text:       !m.Text,
		InlineMath: !m.InlineMath,
		BlockMath:  !m.BlockMath,
		CodeMath:   !m.CodeMath,
		Code:       !m.Code,
		TextEnv:    !m.TextEnv,
	}
}

func (m Mode) String() string {
	switch {
	case m.CodeMath:
		return "code-math"
	case m.InlineMath && m.TextEnv, m.BlockMath && m.TextEnv:
		return "text-env"
	case m.InlineMath:
		return "inline-math"
	case m.BlockMath:
		return "block-math"
	case m.Code:
		return "code"
	default:
		return "text"
	}
}

// Bounds is a span of the document.
type Bounds struct {
	Start int
	End   int
}

// Environment is a pair of symbols delimiting a region, such as "^{" and
// "}".
type Environment struct {
	Open  string
	Close string
}

// Context is a snapshot of the cursor's surroundings for one keystroke.
type Context struct {
	State *state.State
	Tree  *mathtree.Tree
	Mode  Mode
	// Pos is the end of the main selection range.
	Pos int
	// Ranges holds the selection ranges from last to first.
	Ranges []state.Range

	equations map[int]*mathtree.Node
}

// New builds a context for st. tree must be parsed from st.Doc.
func New(st *state.State, tree *mathtree.Tree) *Context {
	ctx := &Context{
		State:     st,
		Tree:      tree,
		Pos:       st.Selection.MainRange().To(),
		equations: make(map[int]*mathtree.Node),
	}
	ranges := st.Selection.Ranges
	ctx.Ranges = make([]state.Range, len(ranges))
	for i, r := range ranges {
		ctx.Ranges[len(ranges)-1-i] = r
	}

	eq, textEnv := ctx.classify(ctx.Pos)
	switch {
	case eq == nil:
		ctx.Mode.Text = true
		ctx.Mode.Code = ctx.inCode(ctx.Pos)
		if ctx.Mode.Code {
			ctx.Mode.Text = false
		}
	case eq.Name == mathtree.CodeBlock:
		ctx.Mode.CodeMath = true
	case eq.IsBlock():
		ctx.Mode.BlockMath = true
	default:
		ctx.Mode.InlineMath = true
	}
	ctx.Mode.TextEnv = eq != nil && textEnv
	return ctx
}

// FromState parses the document and builds a context.
func FromState(st *state.State) *Context {
	return New(st, mathtree.Parse(st.Doc.String()))
}

// classify returns the innermost equation around pos and whether a text
// argument lies between pos and that equation.
func (c *Context) classify(pos int) (*mathtree.Node, bool) {
	textEnv := false
	for _, n := range c.Tree.ResolveStack(pos, 0) {
		if n.Name == mathtree.TextArgument {
			textEnv = true
			continue
		}
		if n.IsMath() {
			return n, textEnv
		}
	}
	return c.emptyInline(pos), false
}

// emptyInline treats a "$$" that never closes, with pos between the two
// signs, as an empty inline equation. The scanner reads it as the opening
// of display math.
func (c *Context) emptyInline(pos int) *mathtree.Node {
	for _, n := range c.Tree.Nodes {
		if n.Name == mathtree.DisplayMath && n.From == pos-1 && n.InnerTo == n.To {
			return &mathtree.Node{Name: mathtree.InlineMath, From: pos - 1, To: pos + 1, InnerFrom: pos, InnerTo: pos}
		}
	}
	return nil
}

func (c *Context) inCode(pos int) bool {
	for _, n := range c.Tree.ResolveStack(pos, 0) {
		if n.Name == mathtree.CodeBlock || n.Name == mathtree.InlineCode {
			return true
		}
	}
	return false
}

func (c *Context) equation(pos int) *mathtree.Node {
	if n, ok := c.equations[pos]; ok {
		return n
	}
	n, _ := c.classify(pos)
	c.equations[pos] = n
	return n
}

// Bounds returns the inner bounds of the equation containing pos.
func (c *Context) Bounds(pos int) (Bounds, bool) {
	n := c.equation(pos)
	if n == nil {
		return Bounds{}, false
	}
	return Bounds{Start: n.InnerFrom, End: n.InnerTo}, true
}

// OuterBounds returns the bounds of the equation containing pos, including
// its delimiters.
func (c *Context) OuterBounds(pos int) (Bounds, bool) {
	n := c.equation(pos)
	if n == nil {
		return Bounds{}, false
	}
	return Bounds{Start: n.From, End: n.To}, true
}

// EnvironmentName returns the innermost \begin{...} environment around
// pos inside its equation, or "".
func (c *Context) EnvironmentName(pos int) string {
	for _, n := range c.Tree.ResolveStack(pos, 0) {
		if n.IsMath() {
			return ""
		}
		if n.Name == mathtree.Environment {
			return n.Info
		}
	}
	return ""
}

// IsWithinEnvironment reports whether pos lies between env's symbols inside
// the equation at the cursor. Nested brackets are skipped when matching the
// closing symbol.
func (c *Context) IsWithinEnvironment(pos int, env Environment) bool {
	if !c.Mode.InMath() || env.Open == "" {
		return false
	}
	b, ok := c.Bounds(c.Pos)
	if !ok {
		return false
	}

	src := c.State.SliceDoc(b.Start, b.End)
	pos -= b.Start

	openBracket := env.Open[len(env.Open)-1:]
	closeBracket := CloseBracket(openBracket)

	// an open symbol ending in a bracket closed by the same bracket is
	// matched bracket by bracket
	offset := 0
	openSearch := env.Open
	if (openBracket == "{" || openBracket == "[" || openBracket == "(") && env.Close == closeBracket {
		offset = len(env.Open) - 1
		openSearch = openBracket
	}

	left := lastIndexFrom(src, env.Open, pos-1)
	for left != -1 {
		right := FindMatchingBracket(src, left+offset, openSearch, env.Close, false)
		if right == -1 {
			return false
		}
		if right >= pos && pos >= left+len(env.Open) {
			return true
		}
		if left <= 0 {
			return false
		}
		left = lastIndexFrom(src, env.Open, left-1)
	}
	return false
}

var textEnvironments = []Environment{
	{Open: `\text{`, Close: "}"},
	{Open: `\tag{`, Close: "}"},
	{Open: `\begin{`, Close: "}"},
	{Open: `\end{`, Close: "}"},
	{Open: `\mathrm{`, Close: "}"},
	{Open: `\color{`, Close: "}"},
}

// InTextEnvironment reports whether the cursor sits in an argument that is
// typeset as text, such as \text{...} or an environment name.
func (c *Context) InTextEnvironment() bool {
	for _, env := range textEnvironments {
		if c.IsWithinEnvironment(c.Pos, env) {
			return true
		}
	}
	return false
}
