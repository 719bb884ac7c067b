// Package mathtree scans Markdown documents with embedded LaTeX into a tree
// of math, text-argument, environment and code nodes.
//
// The scanner is forgiving: unterminated math runs to the end of its
// paragraph (inline) or document (display), and unclosed environments or
// text arguments end with their enclosing math.
package mathtree

// Node names.
const (
	InlineMath   = "InlineMath"
	DisplayMath  = "DisplayMath"
	ParenMath    = "ParenMath"
	BracketMath  = "BracketMath"
	TextArgument = "TextArgument"
	Environment  = "Environment"
	CodeBlock    = "CodeBlock"
	InlineCode   = "InlineCode"
)

// Node is a span of the document. From and To include the delimiters,
// InnerFrom and InnerTo exclude them.
type Node struct {
	Name      string
	From      int
	To        int
	InnerFrom int
	InnerTo   int
	// Info is the environment name for Environment nodes and the info
	// string for CodeBlock nodes.
	Info     string
	Children []*Node
}

// IsMath reports whether the node is a math node.
func (n *Node) IsMath() bool {
	switch n.Name {
	case InlineMath, DisplayMath, ParenMath, BracketMath:
		return true
	case CodeBlock:
		return n.Info == "math"
	}
	return false
}

// IsBlock reports whether the node is display-style math.
func (n *Node) IsBlock() bool {
	return n.Name == DisplayMath || n.Name == BracketMath || (n.Name == CodeBlock && n.Info == "math")
}

// Contains reports whether pos lies in the node. With side == 0 the test is
// against the inner span, both ends included. With side < 0 a node ending
// at pos counts, with side > 0 a node starting at pos counts.
func (n *Node) Contains(pos, side int) bool {
	switch {
	case side == 0:
		return n.InnerFrom <= pos && pos <= n.InnerTo
	case side < 0:
		return n.From < pos && pos <= n.To
	default:
		return n.From <= pos && pos < n.To
	}
}

// Tree is a parsed document.
type Tree struct {
	Nodes []*Node
	Len   int
}

// ResolveStack returns the nodes containing pos, innermost first.
func (t *Tree) ResolveStack(pos, side int) []*Node {
	var path []*Node
	nodes := t.Nodes
	for {
		var next *Node
		for _, n := range nodes {
			if n.Contains(pos, side) {
				next = n
				break
			}
		}
		if next == nil {
			break
		}
		path = append(path, next)
		nodes = next.Children
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// Walk visits every node depth first.
func (t *Tree) Walk(fn func(n *Node, depth int)) {
	var walk func(nodes []*Node, depth int)
	walk = func(nodes []*Node, depth int) {
		for _, n := range nodes {
			fn(n, depth)
			walk(n.Children, depth+1)
		}
	}
	walk(t.Nodes, 0)
}
