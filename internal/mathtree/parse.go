package mathtree

import (
	"strings"
)

// textCommands take a text-mode argument inside math.
var textCommands = map[string]bool{
	"text":       true,
	"textrm":     true,
	"textbf":     true,
	"textit":     true,
	"textsf":     true,
	"texttt":     true,
	"textnormal": true,
	"mbox":       true,
}

type parser struct {
	src string
	pos int
}

// Parse scans doc into a tree.
func Parse(doc string) *Tree {
	p := &parser{src: doc}
	t := &Tree{Len: len(doc)}
	for p.pos < len(p.src) {
		if n := p.topLevel(); n != nil {
			t.Nodes = append(t.Nodes, n)
		}
	}
	return t
}

func (p *parser) topLevel() *Node {
	if p.atLineStart() {
		if n := p.codeBlock(); n != nil {
			return n
		}
	}

	rest := p.src[p.pos:]
	switch {
	case rest[0] == '`':
		return p.inlineCode()
	case strings.HasPrefix(rest, `\(`):
		return p.math(ParenMath, 2, `\)`)
	case strings.HasPrefix(rest, `\[`):
		return p.math(BracketMath, 2, `\]`)
	case rest[0] == '\\':
		p.pos = min(p.pos+2, len(p.src))
	case strings.HasPrefix(rest, "$$"):
		return p.math(DisplayMath, 2, "$$")
	case rest[0] == '$':
		return p.math(InlineMath, 1, "$")
	default:
		p.pos++
	}
	return nil
}

func (p *parser) atLineStart() bool {
	return p.pos == 0 || p.src[p.pos-1] == '\n'
}

// math parses a math node whose opening delimiter starts at p.pos.
func (p *parser) math(name string, openLen int, closeDelim string) *Node {
	n := &Node{Name: name, From: p.pos, InnerFrom: p.pos + openLen}
	p.pos += openLen
	p.mathBody(n, closeDelim, len(p.src), name == InlineMath)
	return n
}

// mathBody scans math content up to closeDelim or limit, attaching
// environments and text arguments to n.
func (p *parser) mathBody(n *Node, closeDelim string, limit int, stopAtBlankLine bool) {
	var envs []*Node
	parent := func() *Node {
		if len(envs) > 0 {
			return envs[len(envs)-1]
		}
		return n
	}
	finish := func(innerTo, to int) {
		for _, env := range envs {
			env.InnerTo, env.To = innerTo, innerTo
		}
		n.InnerTo, n.To = innerTo, to
	}

	for p.pos < limit {
		rest := p.src[p.pos:limit]
		if closeDelim != "" && strings.HasPrefix(rest, closeDelim) {
			finish(p.pos, p.pos+len(closeDelim))
			p.pos += len(closeDelim)
			return
		}
		if stopAtBlankLine && rest[0] == '\n' && p.blankLineFollows() {
			finish(p.pos, p.pos)
			return
		}
		if rest[0] != '\\' {
			p.pos++
			continue
		}

		start := p.pos
		word := commandName(rest[1:])
		after := p.pos + 1 + len(word)
		switch {
		case word == "":
			p.pos = min(p.pos+2, limit)
		case word == "begin" || word == "end":
			name, end, ok := braceArg(p.src[:limit], after)
			if !ok {
				p.pos = after
				continue
			}
			p.pos = end
			if word == "begin" {
				env := &Node{Name: Environment, From: start, InnerFrom: end, Info: name}
				par := parent()
				par.Children = append(par.Children, env)
				envs = append(envs, env)
				continue
			}
			for i := len(envs) - 1; i >= 0; i-- {
				if envs[i].Info != name {
					continue
				}
				for _, inner := range envs[i+1:] {
					inner.InnerTo, inner.To = start, start
				}
				envs[i].InnerTo, envs[i].To = start, end
				envs = envs[:i]
				break
			}
		case textCommands[word] && after < limit && p.src[after] == '{':
			arg := p.textArgument(start, after, closeDelim, limit)
			par := parent()
			par.Children = append(par.Children, arg)
		default:
			p.pos = after
		}
	}
	finish(limit, limit)
}

// textArgument parses \cmd{...} with the brace at bracePos. Inline math
// inside the argument becomes a child node, unless the enclosing math is
// itself delimited by a single dollar.
func (p *parser) textArgument(start, bracePos int, closeDelim string, limit int) *Node {
	n := &Node{Name: TextArgument, From: start, InnerFrom: bracePos + 1}
	p.pos = bracePos + 1
	depth := 1
	for p.pos < limit {
		rest := p.src[p.pos:limit]
		if closeDelim != "" && strings.HasPrefix(rest, closeDelim) {
			break
		}
		switch rest[0] {
		case '\\':
			p.pos = min(p.pos+2, limit)
			continue
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				n.InnerTo, n.To = p.pos, p.pos+1
				p.pos++
				return n
			}
		case '$':
			child := &Node{Name: InlineMath, From: p.pos, InnerFrom: p.pos + 1}
			p.pos++
			p.mathBody(child, "$", limit, true)
			n.Children = append(n.Children, child)
			continue
		}
		p.pos++
	}
	n.InnerTo, n.To = p.pos, p.pos
	return n
}

func (p *parser) blankLineFollows() bool {
	i := p.pos + 1
	for i < len(p.src) && p.src[i] != '\n' {
		if p.src[i] != ' ' && p.src[i] != '\t' && p.src[i] != '\r' {
			return false
		}
		i++
	}
	return i < len(p.src)
}

// codeBlock parses a fenced code block starting on the current line.
func (p *parser) codeBlock() *Node {
	line := p.lineFrom(p.pos)
	indent := len(line) - len(strings.TrimLeft(line, " "))
	if indent > 3 {
		return nil
	}
	fence := fenceRun(line[indent:])
	if fence == "" {
		return nil
	}
	info := strings.TrimSpace(line[indent+len(fence):])
	if fence[0] == '`' && strings.Contains(info, "`") {
		return nil
	}
	if fields := strings.Fields(info); len(fields) > 0 {
		info = fields[0]
	}

	n := &Node{Name: CodeBlock, From: p.pos, Info: info}
	pos := p.pos + len(line)
	if pos < len(p.src) {
		pos++
	}
	n.InnerFrom = pos
	for pos < len(p.src) {
		l := p.lineFrom(pos)
		trimmed := strings.TrimLeft(l, " ")
		if len(l)-len(trimmed) <= 3 {
			if closing := fenceRun(trimmed); closing != "" && closing[0] == fence[0] &&
				len(closing) >= len(fence) && strings.TrimSpace(trimmed[len(closing):]) == "" {
				n.InnerTo, n.To = pos, pos+len(l)
				p.pos = n.To
				if n.IsMath() {
					p.mathChildren(n)
				}
				return n
			}
		}
		pos += len(l) + 1
	}
	n.InnerTo, n.To = len(p.src), len(p.src)
	p.pos = n.To
	if n.IsMath() {
		p.mathChildren(n)
	}
	return n
}

// mathChildren scans the body of a math code block for environments and
// text arguments.
func (p *parser) mathChildren(n *Node) {
	saved := p.pos
	inner := &Node{}
	p.pos = n.InnerFrom
	p.mathBody(inner, "", n.InnerTo, false)
	n.Children = inner.Children
	p.pos = saved
}

func (p *parser) inlineCode() *Node {
	run := 0
	for p.pos+run < len(p.src) && p.src[p.pos+run] == '`' {
		run++
	}
	open := p.src[p.pos : p.pos+run]
	for i := p.pos + run; i < len(p.src); {
		j := strings.Index(p.src[i:], open)
		if j < 0 {
			break
		}
		j += i
		end := j
		for end < len(p.src) && p.src[end] == '`' {
			end++
		}
		if end-j == run {
			n := &Node{Name: InlineCode, From: p.pos, InnerFrom: p.pos + run, InnerTo: j, To: end}
			p.pos = end
			return n
		}
		i = end
	}
	p.pos += run
	return nil
}

func (p *parser) lineFrom(pos int) string {
	end := strings.IndexByte(p.src[pos:], '\n')
	if end < 0 {
		return p.src[pos:]
	}
	return p.src[pos : pos+end]
}

func fenceRun(s string) string {
	if s == "" || (s[0] != '`' && s[0] != '~') {
		return ""
	}
	n := 0
	for n < len(s) && s[n] == s[0] {
		n++
	}
	if n < 3 {
		return ""
	}
	return s[:n]
}

func commandName(s string) string {
	n := 0
	for n < len(s) && isLetter(s[n]) {
		n++
	}
	return s[:n]
}

// braceArg reads {name} at pos and returns the name and the offset after
// the closing brace.
func braceArg(s string, pos int) (string, int, bool) {
	if pos >= len(s) || s[pos] != '{' {
		return "", pos, false
	}
	end := strings.IndexByte(s[pos:], '}')
	if end < 0 {
		return "", pos, false
	}
	return s[pos+1 : pos+end], pos + end + 1, true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
