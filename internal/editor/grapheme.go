package editor

import (
	"github.com/rivo/uniseg"
)

// PrevGraphemeBoundary returns the start of the grapheme cluster ending at
// pos. A line break counts as its own cluster.
func PrevGraphemeBoundary(s string, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos > len(s) {
		pos = len(s)
	}
	if s[pos-1] == '\n' {
		return pos - 1
	}

	lineStart := pos
	for lineStart > 0 && s[lineStart-1] != '\n' {
		lineStart--
	}

	prev := lineStart
	off := lineStart
	rest := s[lineStart:pos]
	state := -1
	for len(rest) > 0 {
		var cluster string
		cluster, rest, _, state = uniseg.StepString(rest, state)
		prev = off
		off += len(cluster)
	}
	return prev
}

// NextGraphemeBoundary returns the end of the grapheme cluster starting at
// pos.
func NextGraphemeBoundary(s string, pos int) int {
	if pos >= len(s) {
		return len(s)
	}
	if pos < 0 {
		pos = 0
	}
	if s[pos] == '\n' {
		return pos + 1
	}
	cluster, _, _, _ := uniseg.StepString(s[pos:], -1)
	if cluster == "" {
		return pos + 1
	}
	return pos + len(cluster)
}

// DisplayWidth returns the terminal cell width of s.
func DisplayWidth(s string) int {
	return uniseg.StringWidth(s)
}
