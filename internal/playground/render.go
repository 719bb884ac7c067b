package playground

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/superle3/snippet-leaf/internal/editor"
	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/tabstop"
)

const tabWidth = 4

// renderDocument draws the document with its cursors, selections and the
// placeholders of the active tabstop groups, one string per line. Lines
// are cut at width cells; width <= 0 disables cutting.
func renderDocument(st *state.State, groups []tabstop.Group, styles Styles, width int) []string {
	doc := st.Doc.String()

	cursors := make(map[int]bool, len(st.Selection.Ranges))
	for _, r := range st.Selection.Ranges {
		cursors[r.Head] = true
	}
	styleAt := func(pos int) (lipgloss.Style, bool) {
		if cursors[pos] {
			return styles.Cursor, true
		}
		for _, r := range st.Selection.Ranges {
			if r.From() <= pos && pos < r.To() {
				return styles.Selection, true
			}
		}
		for _, g := range groups {
			if g.Hidden {
				continue
			}
			for _, r := range g.VisibleRanges() {
				if r.From() <= pos && pos < r.To() {
					return styles.Tabstops[g.Color%tabstop.Colors], true
				}
			}
		}
		return lipgloss.Style{}, false
	}

	var (
		lines []string
		b     strings.Builder
		cells int
		cut   bool
	)
	write := func(pos int, s string, w int) {
		if cut || width > 0 && cells+w > width {
			cut = true
			return
		}
		if style, ok := styleAt(pos); ok {
			s = style.Render(s)
		}
		b.WriteString(s)
		cells += w
	}

	for pos := 0; ; {
		if pos == len(doc) || doc[pos] == '\n' {
			if cursors[pos] {
				write(pos, " ", 1)
			}
			lines = append(lines, b.String())
			b.Reset()
			cells = 0
			cut = false
			if pos == len(doc) {
				break
			}
			pos++
			continue
		}

		end := editor.NextGraphemeBoundary(doc, pos)
		cluster := doc[pos:end]
		if cluster == "\t" {
			write(pos, strings.Repeat(" ", tabWidth), tabWidth)
		} else {
			write(pos, cluster, runewidth.StringWidth(cluster))
		}
		pos = end
	}
	return lines
}
