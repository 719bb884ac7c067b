package expansion

import (
	"github.com/superle3/snippet-leaf/internal/editor/text"
	"github.com/superle3/snippet-leaf/internal/snippet"
	"github.com/superle3/snippet-leaf/internal/tabstop"
)

// ChangeSpec is one pending replacement. Insert has its "@@" escapes
// resolved; the offsets of the literal "@" characters they produced are
// kept so those are not read as tabstops.
type ChangeSpec struct {
	From   int
	To     int
	Insert string
	// TriggerKey is the typed character that fired an automatic or visual
	// snippet. It is typed into the document before the expansion so that
	// undo can step back to it.
	TriggerKey string

	escaped []int
}

// NewChangeSpec creates a change replacing [from, to) with a replacement
// in tabstop syntax.
func NewChangeSpec(from, to int, replacement, triggerKey string) ChangeSpec {
	insert, escaped := snippet.Unescape(replacement)
	return ChangeSpec{From: from, To: to, Insert: insert, TriggerKey: triggerKey, escaped: escaped}
}

// Tabstops finds the tabstop markers of the change once its text has been
// inserted into doc at start.
func (c ChangeSpec) Tabstops(doc text.Text, start int) []tabstop.Spec {
	inserted := doc.SliceString(start, start+len(c.Insert))
	markers := snippet.FindMarkers(inserted, start, c.escaped)
	specs := make([]tabstop.Spec, len(markers))
	for i, m := range markers {
		specs[i] = tabstop.Spec{Number: m.Number, From: m.From, To: m.To, Placeholder: m.Placeholder}
	}
	return specs
}

func (c ChangeSpec) overlaps(other ChangeSpec) bool {
	return c.From < other.To && other.From < c.To
}
