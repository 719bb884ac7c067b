package suite

import (
	"errors"
	"strings"

	"github.com/superle3/snippet-leaf/internal/editor/state"
)

// Markers used by ParseDocument and FormatDocument. A selection is written
// as «text» with the cursor at the closing mark.
const (
	cursorMark   = '|'
	selStartMark = '«'
	selEndMark   = '»'
	markerEscape = '\\'
)

// ErrNoCursor is returned for a document without cursor markers.
var ErrNoCursor = errors.New("document has no cursor marker")

// ParseDocument strips cursor and selection markers from s. "\|" is a
// literal bar. The last marker holds the main selection.
func ParseDocument(s string) (string, state.Selection, error) {
	var b strings.Builder
	var ranges []state.Range
	anchor := -1
	runes := []rune(s)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == markerEscape && i+1 < len(runes) && runes[i+1] == cursorMark:
			b.WriteRune(cursorMark)
			i++
		case r == cursorMark:
			ranges = append(ranges, state.Cursor(b.Len()))
		case r == selStartMark:
			anchor = b.Len()
		case r == selEndMark && anchor >= 0:
			ranges = append(ranges, state.Span(anchor, b.Len()))
			anchor = -1
		default:
			b.WriteRune(r)
		}
	}
	if len(ranges) == 0 {
		return b.String(), state.Selection{}, ErrNoCursor
	}
	return b.String(), state.NewSelection(ranges...), nil
}

// FormatDocument renders st with the markers ParseDocument reads.
func FormatDocument(st *state.State) string {
	doc := st.Doc.String()
	marks := make(map[int][]rune)
	for _, r := range st.Selection.Ranges {
		if r.Empty() {
			marks[r.Head] = append(marks[r.Head], cursorMark)
			continue
		}
		marks[r.From()] = append(marks[r.From()], selStartMark)
		marks[r.To()] = append([]rune{selEndMark}, marks[r.To()]...)
	}

	var b strings.Builder
	for i := 0; i <= len(doc); i++ {
		for _, m := range marks[i] {
			b.WriteRune(m)
		}
		if i == len(doc) {
			break
		}
		if doc[i] == cursorMark {
			b.WriteRune(markerEscape)
		}
		b.WriteByte(doc[i])
	}
	return b.String()
}
