// Package presentation renders command results as text or JSON.
package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"gopkg.in/yaml.v3"

	"github.com/superle3/snippet-leaf/internal/snippet"
)

// Formatter handles output formatting
type Formatter struct {
	writer io.Writer
}

// NewFormatter creates a new formatter
func NewFormatter(writer io.Writer) *Formatter {
	return &Formatter{
		writer: writer,
	}
}

// FormatJSON writes v as indented JSON.
func (f *Formatter) FormatJSON(v any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// FormatExpand writes the document, one line of tabstop groups when any
// are active, and the diff when present.
func (f *Formatter) FormatExpand(r ExpandDTO) error {
	var b strings.Builder
	b.WriteString(r.Document)
	b.WriteByte('\n')
	if len(r.Tabstops) > 0 {
		b.WriteString("tabstops: ")
		b.WriteString(strings.Join(r.Tabstops, " "))
		b.WriteByte('\n')
	}
	if r.Diff != "" {
		b.WriteString(r.Diff)
	}
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatCheck writes the definition errors followed by a table of counts.
func (f *Formatter) FormatCheck(r CheckDTO) error {
	var b strings.Builder
	for _, e := range r.Errors {
		fmt.Fprintf(&b, "error: snippet %d (%q): %s\n", e.Index, e.Trigger, e.Message)
	}

	t := table.New().
		Headers("kind", "snippets").
		Row("total", strconv.Itoa(r.Snippets)).
		Row("text", strconv.Itoa(r.Modes.Text)).
		Row("inline math", strconv.Itoa(r.Modes.InlineMath)).
		Row("block math", strconv.Itoa(r.Modes.BlockMath)).
		Row("code", strconv.Itoa(r.Modes.Code)).
		Row("automatic", strconv.Itoa(r.Automatic)).
		Row("regex", strconv.Itoa(r.Regex)).
		Row("visual", strconv.Itoa(r.Visual)).
		Row("function", strconv.Itoa(r.Functions))

	fmt.Fprintf(&b, "%s\n%s\n", r.Path, t.Render())
	_, err := io.WriteString(f.writer, b.String())
	return err
}

// FormatSnippets writes raws as a YAML list.
func (f *Formatter) FormatSnippets(raws []snippet.RawSnippet) error {
	encoder := yaml.NewEncoder(f.writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(raws); err != nil {
		return fmt.Errorf("encoding snippets: %w", err)
	}
	return encoder.Close()
}

// Diff returns a line diff of before and after, or "" when they are
// equal.
func Diff(before, after string) string {
	if before == after {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	out.WriteString("--- before\n+++ after\n")
	for _, d := range diffs {
		prefix := " "
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			prefix = "-"
		case diffmatchpatch.DiffInsert:
			prefix = "+"
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(strings.TrimSuffix(line, "\n"))
			out.WriteByte('\n')
		}
	}
	return out.String()
}
