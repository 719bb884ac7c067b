package snippet

import (
	"regexp"
	"strconv"
	"strings"
)

// @1, @{1} and @{1:placeholder}
var markerRe = regexp.MustCompile(`@(?:(\d+)|\{(\d+)\}|\{(\d+):([^}]+)\})`)

// markers plus the @@ escape; markers are matched whole so an @@ inside a
// placeholder is not taken for an escape
var escapeRe = regexp.MustCompile(`@(?:(@)|\d+|\{\d+\}|\{(\d+):([^}]+)\})`)

// @[0] capture references
var captureRe = regexp.MustCompile(`@\[(\d+)\]`)

// VisualPlaceholder is replaced with the selected text in visual snippets.
const VisualPlaceholder = "@{VISUAL}"

// Marker is a tabstop marker in inserted text.
type Marker struct {
	Number      int
	From        int
	To          int
	Placeholder string
}

// Unescape turns each "@@" outside a marker into "@" and returns the
// offsets, in the result, of the literal "@" characters it produced. An
// "@@" inside a placeholder body becomes "@" as well.
func Unescape(s string) (string, []int) {
	matches := escapeRe.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	var b strings.Builder
	var escaped []int
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		switch {
		case m[2] >= 0:
			escaped = append(escaped, b.Len())
			b.WriteByte('@')
		case m[6] >= 0:
			b.WriteString("@{")
			b.WriteString(s[m[4]:m[5]])
			b.WriteByte(':')
			b.WriteString(strings.ReplaceAll(s[m[6]:m[7]], "@@", "@"))
			b.WriteByte('}')
		default:
			b.WriteString(s[m[0]:m[1]])
		}
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String(), escaped
}

// FindMarkers returns the tabstop markers in s, offset by base. Markers
// starting at one of the escaped offsets are literal text; the scan resumes
// right after such an "@" so markers inside its span are still found.
func FindMarkers(s string, base int, escaped []int) []Marker {
	skip := make(map[int]bool, len(escaped))
	for _, i := range escaped {
		skip[i] = true
	}

	var out []Marker
	for pos := 0; pos < len(s); {
		m := markerRe.FindStringSubmatchIndex(s[pos:])
		if m == nil {
			break
		}
		for i := range m {
			if m[i] >= 0 {
				m[i] += pos
			}
		}
		if skip[m[0]] {
			pos = m[0] + 1
			continue
		}
		pos = m[1]
		mk := Marker{From: base + m[0], To: base + m[1]}
		switch {
		case m[2] >= 0:
			mk.Number, _ = strconv.Atoi(s[m[2]:m[3]])
		case m[4] >= 0:
			mk.Number, _ = strconv.Atoi(s[m[4]:m[5]])
		default:
			mk.Number, _ = strconv.Atoi(s[m[6]:m[7]])
			mk.Placeholder = s[m[8]:m[9]]
		}
		out = append(out, mk)
	}
	return out
}

// EscapeLiteral escapes text so that it is inserted verbatim.
func EscapeLiteral(s string) string {
	return strings.ReplaceAll(s, "@", "@@")
}

// StripV2 returns the visible text of a replacement: markers give way to
// their placeholders and escapes to a literal "@".
func StripV2(s string) string {
	return escapeRe.ReplaceAllStringFunc(s, func(m string) string {
		sub := escapeRe.FindStringSubmatch(m)
		switch {
		case sub[1] != "":
			return "@"
		case sub[3] != "":
			return strings.ReplaceAll(sub[3], "@@", "@")
		default:
			return ""
		}
	})
}

// substituteCaptures replaces @[N] with the N-th capture group, escaped.
// References past the last group are left alone.
func substituteCaptures(s string, groups []string) string {
	return captureRe.ReplaceAllStringFunc(s, func(m string) string {
		n, err := strconv.Atoi(m[2 : len(m)-1])
		if err != nil || n >= len(groups) {
			return m
		}
		return EscapeLiteral(groups[n])
	})
}
