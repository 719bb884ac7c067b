package mathtree

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestParse_InlineAndDisplay(t *testing.T) {
	doc := "a $x+1$ b\n$$\ny^2\n$$"
	tree := Parse(doc)

	require.Len(t, tree.Nodes, 2)
	inline, display := tree.Nodes[0], tree.Nodes[1]

	require.Equal(t, InlineMath, inline.Name)
	require.Equal(t, "x+1", doc[inline.InnerFrom:inline.InnerTo])
	require.Equal(t, "$x+1$", doc[inline.From:inline.To])

	require.Equal(t, DisplayMath, display.Name)
	require.Equal(t, "\ny^2\n", doc[display.InnerFrom:display.InnerTo])
	require.True(t, display.IsBlock())
}

func TestParse_ParenAndBracket(t *testing.T) {
	doc := `\(a\) and \[b\]`
	tree := Parse(doc)

	require.Equal(t, []string{ParenMath, BracketMath}, names(tree.Nodes))
	require.Equal(t, "a", doc[tree.Nodes[0].InnerFrom:tree.Nodes[0].InnerTo])
	require.Equal(t, "b", doc[tree.Nodes[1].InnerFrom:tree.Nodes[1].InnerTo])
}

func TestParse_EscapedDollarIsText(t *testing.T) {
	tree := Parse(`costs \$5 and \$6`)

	require.Empty(t, tree.Nodes)
}

func TestParse_UnterminatedInlineStopsAtBlankLine(t *testing.T) {
	doc := "$a+b\n\nplain"
	tree := Parse(doc)

	require.Len(t, tree.Nodes, 1)
	require.Equal(t, 4, tree.Nodes[0].InnerTo)
	require.Empty(t, tree.ResolveStack(len(doc), 0))
}

func TestParse_UnterminatedDisplayRunsToEnd(t *testing.T) {
	doc := "$$x"
	tree := Parse(doc)

	require.Equal(t, len(doc), tree.Nodes[0].InnerTo)
	require.Equal(t, []string{DisplayMath}, names(tree.ResolveStack(3, 0)))
}

func TestParse_TextArgumentWithNestedMath(t *testing.T) {
	doc := `$$\text{if $x$ then}$$`
	tree := Parse(doc)

	// inside \text{...}
	stack := tree.ResolveStack(9, 0)
	require.Equal(t, []string{TextArgument, DisplayMath}, names(stack))

	// inside the nested $x$
	stack = tree.ResolveStack(12, 0)
	require.Equal(t, []string{InlineMath, TextArgument, DisplayMath}, names(stack))
}

func TestParse_TextArgumentInInlineMathEndsAtDollar(t *testing.T) {
	doc := `$\text{a$ b`
	tree := Parse(doc)

	require.Equal(t, InlineMath, tree.Nodes[0].Name)
	require.Equal(t, 8, tree.Nodes[0].InnerTo)
}

func TestParse_Environments(t *testing.T) {
	doc := "$$\\begin{pmatrix}a & b \\\\ \\begin{cases}c\\end{cases}\\end{pmatrix}$$"
	tree := Parse(doc)

	pos := len("$$\\begin{pmatrix}a")
	stack := tree.ResolveStack(pos, 0)
	require.Equal(t, []string{Environment, DisplayMath}, names(stack))
	require.Equal(t, "pmatrix", stack[0].Info)

	pos = len("$$\\begin{pmatrix}a & b \\\\ \\begin{cases}c")
	stack = tree.ResolveStack(pos, 0)
	require.Equal(t, "cases", stack[0].Info)
	require.Equal(t, "pmatrix", stack[1].Info)
}

func TestParse_UnclosedEnvironmentEndsWithMath(t *testing.T) {
	doc := "$\\begin{matrix}a$ text"
	tree := Parse(doc)

	env := tree.Nodes[0].Children[0]
	require.Equal(t, 16, env.InnerTo)
	require.Empty(t, tree.ResolveStack(len(doc), 0))
}

func TestParse_CodeBlocks(t *testing.T) {
	doc := "```python\nx = '$a$'\n```\n```math\n\\text{a}\n```\n`$b$`"
	tree := Parse(doc)

	require.Equal(t, []string{CodeBlock, CodeBlock, InlineCode}, names(tree.Nodes))
	require.Equal(t, "python", tree.Nodes[0].Info)
	require.False(t, tree.Nodes[0].IsMath())
	require.Empty(t, tree.Nodes[0].Children, "no math inside plain code")

	mathBlock := tree.Nodes[1]
	require.True(t, mathBlock.IsMath())
	require.Equal(t, "\\text{a}\n", doc[mathBlock.InnerFrom:mathBlock.InnerTo])
	require.Equal(t, []string{TextArgument}, names(mathBlock.Children))
}

func TestResolveStack_Sides(t *testing.T) {
	tree := Parse("$a$")

	require.Empty(t, tree.ResolveStack(0, 0))
	require.Len(t, tree.ResolveStack(1, 0), 1)
	require.Len(t, tree.ResolveStack(2, 0), 1)
	require.Empty(t, tree.ResolveStack(3, 0))
	require.Len(t, tree.ResolveStack(3, -1), 1)
	require.Len(t, tree.ResolveStack(0, 1), 1)
	require.Empty(t, tree.ResolveStack(0, -1))
}

func TestProperty_ParseNeverPanicsAndNodesNest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := rapid.StringMatching("[a$\\\\{}()\\[\\]`\n ]{0,40}|(text|begin|end|math)").Draw(t, "doc")
		tree := Parse(doc)

		tree.Walk(func(n *Node, _ int) {
			require.LessOrEqual(t, n.From, n.InnerFrom)
			require.LessOrEqual(t, n.InnerFrom, n.InnerTo)
			require.LessOrEqual(t, n.InnerTo, n.To)
			require.LessOrEqual(t, n.To, len(doc))
			for _, c := range n.Children {
				require.GreaterOrEqual(t, c.From, n.InnerFrom)
				require.LessOrEqual(t, c.To, n.InnerTo)
			}
		})
	})
}
