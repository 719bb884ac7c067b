// Package change implements composable document change sets.
//
// A Set describes a document edit as an ordered run of sections. Each section
// either keeps a span of the old document or replaces it with new text. Sets
// can be applied, inverted against the document they were made for, composed
// with a following set and used to map positions across the edit.
package change

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/superle3/snippet-leaf/internal/editor/text"
)

var (
	// ErrOverlap is returned when two specs passed to Of overlap.
	ErrOverlap = errors.New("overlapping changes")
	// ErrOutOfRange is returned when a spec reaches outside the document.
	ErrOutOfRange = errors.New("change out of range")
	// ErrLengthMismatch is returned when a set is used with a document or
	// set of the wrong length.
	ErrLengthMismatch = errors.New("change set length mismatch")
)

// kept marks a section that leaves the old text in place.
const kept = -1

// Spec is a single replacement in document coordinates.
type Spec struct {
	From   int
	To     int
	Insert string
}

// Set is an immutable change set. The zero value is an empty set over an
// empty document.
type Set struct {
	// sections holds pairs of (old length, new length); new length is
	// kept for untouched spans.
	sections []int
	// texts holds the inserted text for every section pair.
	texts []string
}

// Empty returns a set that leaves a document of the given length unchanged.
func Empty(length int) Set {
	var b builder
	b.add(length, kept, "", false)
	return b.set()
}

// Of builds a set from specs that all refer to the same document of the
// given length. Specs are ordered by position; insertions at the same point
// keep their relative order.
func Of(specs []Spec, length int) (Set, error) {
	sorted := make([]Spec, len(specs))
	copy(sorted, specs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].From != sorted[j].From {
			return sorted[i].From < sorted[j].From
		}
		return sorted[i].To < sorted[j].To
	})

	var b builder
	pos := 0
	for _, sp := range sorted {
		if sp.From < 0 || sp.To < sp.From || sp.To > length {
			return Set{}, fmt.Errorf("change [%d,%d) in document of length %d: %w", sp.From, sp.To, length, ErrOutOfRange)
		}
		if sp.From < pos {
			return Set{}, fmt.Errorf("change [%d,%d) starts before %d: %w", sp.From, sp.To, pos, ErrOverlap)
		}
		if sp.From > pos {
			b.add(sp.From-pos, kept, "", false)
		}
		b.add(sp.To-sp.From, len(sp.Insert), sp.Insert, false)
		pos = sp.To
	}
	if length > pos {
		b.add(length-pos, kept, "", false)
	}
	return b.set(), nil
}

// Length returns the length of the document the set applies to.
func (s Set) Length() int {
	n := 0
	for i := 0; i < len(s.sections); i += 2 {
		n += s.sections[i]
	}
	return n
}

// NewLength returns the length of the document after the set is applied.
func (s Set) NewLength() int {
	n := 0
	for i := 0; i < len(s.sections); i += 2 {
		if s.sections[i+1] == kept {
			n += s.sections[i]
		} else {
			n += s.sections[i+1]
		}
	}
	return n
}

// Empty reports whether the set leaves the document untouched.
func (s Set) Empty() bool {
	for i := 0; i < len(s.sections); i += 2 {
		if s.sections[i+1] != kept {
			return false
		}
	}
	return true
}

// Apply applies the set to doc.
func (s Set) Apply(doc text.Text) (text.Text, error) {
	if doc.Len() != s.Length() {
		return text.Text{}, fmt.Errorf("applying to document of length %d, want %d: %w", doc.Len(), s.Length(), ErrLengthMismatch)
	}
	src := doc.String()
	var out strings.Builder
	out.Grow(s.NewLength())
	pos := 0
	for i := 0; i < len(s.sections); i += 2 {
		oldLen, newLen := s.sections[i], s.sections[i+1]
		if newLen == kept {
			out.WriteString(src[pos : pos+oldLen])
		} else {
			out.WriteString(s.texts[i/2])
		}
		pos += oldLen
	}
	return text.New(out.String()), nil
}

// MapPos maps a position in the old document to the new one. With assoc < 0
// a position at an insertion point stays before the inserted text, otherwise
// it moves after it. Positions past the end map to the end.
func (s Set) MapPos(pos, assoc int) int {
	posA, posB := 0, 0
	for i := 0; i < len(s.sections); i += 2 {
		oldLen, newLen := s.sections[i], s.sections[i+1]
		endA := posA + oldLen
		if newLen == kept {
			if endA > pos {
				return posB + (pos - posA)
			}
			posB += oldLen
		} else {
			if endA > pos || (endA == pos && assoc < 0 && oldLen == 0) {
				if pos == posA || assoc < 0 {
					return posB
				}
				return posB + newLen
			}
			posB += newLen
		}
		posA = endA
	}
	return posB
}

// Invert returns the set that undoes s. doc must be the document s was
// applied to.
func (s Set) Invert(doc text.Text) Set {
	inv := Set{
		sections: make([]int, len(s.sections)),
		texts:    make([]string, len(s.texts)),
	}
	pos := 0
	for i := 0; i < len(s.sections); i += 2 {
		oldLen, newLen := s.sections[i], s.sections[i+1]
		if newLen == kept {
			inv.sections[i], inv.sections[i+1] = oldLen, kept
		} else {
			inv.sections[i], inv.sections[i+1] = newLen, oldLen
			inv.texts[i/2] = doc.SliceString(pos, pos+oldLen)
		}
		pos += oldLen
	}
	return inv
}

// Compose returns a set equivalent to applying s and then other.
func (s Set) Compose(other Set) (Set, error) {
	if s.NewLength() != other.Length() {
		return Set{}, fmt.Errorf("composing %d with %d: %w", s.NewLength(), other.Length(), ErrLengthMismatch)
	}

	var out builder
	a, b := newSectionIter(s), newSectionIter(other)
	open := false
	for {
		switch {
		case a.done() && b.done():
			return out.set(), nil
		case a.ins == 0:
			// deletion in a
			out.add(a.len, 0, "", open)
			a.next()
		case b.len == 0 && !b.done():
			// insertion in b
			out.add(0, b.ins, b.text(), open)
			b.next()
		case a.done() || b.done():
			return Set{}, ErrLengthMismatch
		default:
			n := min(a.len2(), b.len)
			before := len(out.sections)
			switch {
			case a.ins == kept:
				ins, txt := kept, ""
				if b.ins != kept {
					ins = 0
					if b.off == 0 {
						ins, txt = b.ins, b.text()
					}
				}
				out.add(n, ins, txt, open)
			case b.ins == kept:
				out.add(a.oldLenOnce(), n, a.textBit(n), open)
			default:
				ins, txt := 0, ""
				if b.off == 0 {
					ins, txt = b.ins, b.text()
				}
				out.add(a.oldLenOnce(), ins, txt, open)
			}
			open = (a.ins > n || (b.ins >= 0 && b.len > n)) && (open || len(out.sections) > before)
			a.forward2(n)
			b.forward(n)
		}
	}
}

// IterChanges calls fn for every replaced section with its span in the old
// document, its span in the new document and the inserted text.
func (s Set) IterChanges(fn func(fromA, toA, fromB, toB int, inserted string)) {
	posA, posB := 0, 0
	for i := 0; i < len(s.sections); i += 2 {
		oldLen, newLen := s.sections[i], s.sections[i+1]
		if newLen == kept {
			posA += oldLen
			posB += oldLen
			continue
		}
		fn(posA, posA+oldLen, posB, posB+newLen, s.texts[i/2])
		posA += oldLen
		posB += newLen
	}
}

// Touches reports whether any change in other starts or ends inside a range
// changed by s, using the new coordinates of s and the old ones of other.
func (s Set) Touches(other Set) bool {
	var ranges [][2]int
	s.IterChanges(func(_, _, fromB, toB int, _ string) {
		ranges = append(ranges, [2]int{fromB, toB})
	})
	touches := false
	other.IterChanges(func(fromA, toA, _, _ int, _ string) {
		for _, r := range ranges {
			if toA >= r[0] && fromA <= r[1] {
				touches = true
			}
		}
	})
	return touches
}

func (s Set) String() string {
	var b strings.Builder
	for i := 0; i < len(s.sections); i += 2 {
		if i > 0 {
			b.WriteByte(' ')
		}
		if s.sections[i+1] == kept {
			fmt.Fprintf(&b, "%d", s.sections[i])
		} else {
			fmt.Fprintf(&b, "%d:%q", s.sections[i], s.texts[i/2])
		}
	}
	return b.String()
}

type builder struct {
	sections []int
	texts    []string
}

// add appends a section, joining it with the previous one when both are of
// the same kind or when join is set.
func (b *builder) add(oldLen, newLen int, ins string, join bool) {
	if oldLen == 0 && newLen <= 0 {
		return
	}
	last := len(b.sections) - 2
	switch {
	case last >= 0 && newLen <= 0 && newLen == b.sections[last+1]:
		b.sections[last] += oldLen
	case last >= 0 && oldLen == 0 && b.sections[last] == 0:
		b.sections[last+1] += newLen
		b.texts[last/2] += ins
	case join && last >= 0:
		b.sections[last] += oldLen
		b.sections[last+1] += newLen
		b.texts[last/2] += ins
	default:
		b.sections = append(b.sections, oldLen, newLen)
		b.texts = append(b.texts, ins)
	}
}

func (b *builder) set() Set {
	return Set{sections: b.sections, texts: b.texts}
}

type sectionIter struct {
	set Set
	i   int
	len int
	ins int
	off int
}

func newSectionIter(s Set) *sectionIter {
	it := &sectionIter{set: s}
	it.next()
	return it
}

func (it *sectionIter) next() {
	if it.i < len(it.set.sections) {
		it.len, it.ins = it.set.sections[it.i], it.set.sections[it.i+1]
		it.i += 2
	} else {
		it.len, it.ins = 0, -2
	}
	it.off = 0
}

func (it *sectionIter) done() bool { return it.ins == -2 }

// len2 is the length of the current section in the new document.
func (it *sectionIter) len2() int {
	if it.ins < 0 {
		return it.len
	}
	return it.ins
}

func (it *sectionIter) text() string {
	idx := (it.i - 2) / 2
	if idx < 0 || idx >= len(it.set.texts) {
		return ""
	}
	return it.set.texts[idx]
}

func (it *sectionIter) textBit(n int) string {
	t := it.text()
	return t[it.off : it.off+n]
}

// oldLenOnce returns the old length of a replaced section the first time it
// is consumed and zero afterwards.
func (it *sectionIter) oldLenOnce() int {
	if it.off != 0 {
		return 0
	}
	return it.len
}

func (it *sectionIter) forward(n int) {
	if n == it.len {
		it.next()
		return
	}
	it.len -= n
	it.off += n
}

func (it *sectionIter) forward2(n int) {
	switch {
	case it.ins == kept:
		it.forward(n)
	case n == it.ins:
		it.next()
	default:
		it.ins -= n
		it.off += n
	}
}
