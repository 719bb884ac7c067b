// Package text provides the immutable document text used by the editor.
//
// All positions are byte offsets into the document. Line numbers are 1-based.
package text

import (
	"sort"
	"strings"
)

// Text is an immutable document. The zero value is an empty document.
type Text struct {
	s          string
	lineStarts []int
}

// Line describes one line of a document. To excludes the line break.
type Line struct {
	Number int
	From   int
	To     int
	Text   string
}

// New creates a Text from a string.
func New(s string) Text {
	starts := []int{0}
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return Text{s: s, lineStarts: starts}
}

// Len returns the document length in bytes.
func (t Text) Len() int { return len(t.s) }

// String returns the full document.
func (t Text) String() string { return t.s }

// SliceString returns the text between from and to, clamped to the document.
func (t Text) SliceString(from, to int) string {
	from = clamp(from, 0, len(t.s))
	to = clamp(to, 0, len(t.s))
	if to <= from {
		return ""
	}
	return t.s[from:to]
}

// Lines returns the number of lines in the document.
func (t Text) Lines() int {
	if t.lineStarts == nil {
		return 1
	}
	return len(t.lineStarts)
}

// LineAt returns the line containing pos.
func (t Text) LineAt(pos int) Line {
	pos = clamp(pos, 0, len(t.s))
	if t.lineStarts == nil {
		return Line{Number: 1, From: 0, To: 0}
	}
	// index of the last line start <= pos
	i := sort.Search(len(t.lineStarts), func(i int) bool { return t.lineStarts[i] > pos }) - 1
	return t.Line(i + 1)
}

// Line returns line n (1-based), clamped to the document.
func (t Text) Line(n int) Line {
	if t.lineStarts == nil {
		return Line{Number: 1}
	}
	n = clamp(n, 1, len(t.lineStarts))
	from := t.lineStarts[n-1]
	to := len(t.s)
	if n < len(t.lineStarts) {
		to = t.lineStarts[n] - 1
	}
	return Line{Number: n, From: from, To: to, Text: t.s[from:to]}
}

// Replace returns a new Text with [from, to) replaced by insert.
func (t Text) Replace(from, to int, insert string) Text {
	var b strings.Builder
	b.Grow(len(t.s) - (to - from) + len(insert))
	b.WriteString(t.s[:from])
	b.WriteString(insert)
	b.WriteString(t.s[to:])
	return New(b.String())
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
