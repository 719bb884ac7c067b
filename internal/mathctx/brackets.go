package mathctx

import "strings"

var closeBrackets = map[string]string{"(": ")", "[": "]", "{": "}"}

// CloseBracket returns the bracket closing open, or "".
func CloseBracket(open string) string {
	return closeBrackets[open]
}

// OpenBracket returns the bracket opened by closing, or "".
func OpenBracket(closing string) string {
	for o, c := range closeBrackets {
		if c == closing {
			return o
		}
	}
	return ""
}

// FindMatchingBracket returns the index of the bracket matching the one at
// start, skipping nested pairs, or -1. Searching backwards, start is the
// index of the closing bracket and the result that of its opening one.
func FindMatchingBracket(s string, start int, open, closing string, backwards bool) int {
	return FindMatchingBracketIn(s, start, open, closing, backwards, len(s))
}

// FindMatchingBracketIn is FindMatchingBracket with the forward search
// stopping at end.
func FindMatchingBracketIn(s string, start int, open, closing string, backwards bool, end int) int {
	if backwards {
		rs := reverse(s)
		idx := FindMatchingBracketIn(rs, len(s)-(start+len(closing)), reverse(closing), reverse(open), false, len(rs))
		if idx == -1 {
			return -1
		}
		return len(s) - (idx + len(open))
	}

	depth := 0
	if end > len(s) {
		end = len(s)
	}
	for i := max(start, 0); i < end; i++ {
		switch {
		case strings.HasPrefix(s[i:], open):
			depth++
		case strings.HasPrefix(s[i:], closing):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lastIndexFrom finds the last occurrence of sub starting at or before
// from.
func lastIndexFrom(s, sub string, from int) int {
	if from < 0 {
		from = 0
	}
	end := from + len(sub)
	if end > len(s) {
		end = len(s)
	}
	return strings.LastIndex(s[:end], sub)
}

func reverse(s string) string {
	b := []byte(s)
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
