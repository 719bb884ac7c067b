// Package snippet compiles user-authored snippet definitions and matches
// them against the text before the cursor.
//
// Snippets come in three kinds: literal triggers, regex triggers (option
// "r") and visual snippets (option "v") that wrap the selection. A
// replacement is either a template in version 2 syntax, where @1, @{1}
// and @{1:text} are tabstops and @@ is a literal "@", or a Lua function
// returning such a template. Version 1 templates ($1, ${1:text}, [[0]])
// are converted on load.
package snippet

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dlclark/regexp2"

	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/mathctx"
)

// MatchTimeout bounds a single regex trigger evaluation.
const MatchTimeout = 100 * time.Millisecond

// Snippet is a compiled snippet definition. It is immutable.
type Snippet struct {
	Trigger     string
	Replacement string
	Options     Options
	Flags       string
	Priority    int
	Description string
	Version     int
	// ExcludedEnvironments are regions the snippet never fires in.
	ExcludedEnvironments []mathctx.Environment

	regex  *regexp2.Regexp
	fn     *luaFunc
	fnV1   bool
	groups int
}

// Result is a successful match of one snippet.
type Result struct {
	// TriggerPos is the document offset where the trigger text starts.
	TriggerPos  int
	Replacement string
}

// IsRegex reports whether the trigger is a regular expression.
func (s *Snippet) IsRegex() bool { return s.regex != nil }

// IsFunc reports whether the replacement is a Lua function.
func (s *Snippet) IsFunc() bool { return s.fn != nil }

// Groups returns the number of capture groups of a regex trigger.
func (s *Snippet) Groups() int { return s.groups }

// Process matches the snippet against line, the text of the current line
// up to the cursor (plus the typed character for automatic and visual
// snippets). lineFrom is the document offset of the line start, rng the
// selection range and sel its text.
func (s *Snippet) Process(line string, lineFrom int, rng state.Range, sel string) (Result, bool, error) {
	switch {
	case s.Options.Visual:
		return s.processVisual(line, rng, sel)
	case s.regex != nil:
		return s.processRegex(line, lineFrom)
	}

	if !strings.HasSuffix(line, s.Trigger) {
		return Result{}, false, nil
	}
	res := Result{TriggerPos: lineFrom + len(line) - len(s.Trigger)}
	if s.fn == nil {
		res.Replacement = s.Replacement
		return res, true, nil
	}
	out, err := s.fn.callString(s.Trigger)
	if err != nil {
		return Result{}, false, err
	}
	res.Replacement = s.functionOutput(out)
	return res, true, nil
}

func (s *Snippet) processVisual(line string, rng state.Range, sel string) (Result, bool, error) {
	if sel == "" || !strings.HasSuffix(line, s.Trigger) {
		return Result{}, false, nil
	}
	res := Result{TriggerPos: rng.From()}
	if s.fn == nil {
		res.Replacement = strings.ReplaceAll(s.Replacement, VisualPlaceholder, EscapeLiteral(sel))
		return res, true, nil
	}
	out, err := s.fn.callString(sel)
	if err != nil {
		return Result{}, false, err
	}
	res.Replacement = s.functionOutput(out)
	return res, true, nil
}

func (s *Snippet) processRegex(line string, lineFrom int) (Result, bool, error) {
	m, err := s.regex.FindStringMatch(line)
	if err != nil {
		return Result{}, false, fmt.Errorf("matching %q: %w", s.Trigger, err)
	}
	if m == nil {
		return Result{}, false, nil
	}

	groups := make([]string, 0, len(m.Groups()))
	for _, g := range m.Groups() {
		groups = append(groups, g.String())
	}
	res := Result{TriggerPos: lineFrom + byteOffset(line, m.Index)}
	if s.fn == nil {
		res.Replacement = substituteCaptures(s.Replacement, groups[1:])
		return res, true, nil
	}
	out, err := s.fn.callMatch(groups)
	if err != nil {
		return Result{}, false, err
	}
	res.Replacement = s.functionOutput(out)
	return res, true, nil
}

func (s *Snippet) functionOutput(out string) string {
	if s.fnV1 {
		return ConvertV1Output(out)
	}
	return out
}

// byteOffset converts a rune index into a byte offset of s.
func byteOffset(s string, runes int) int {
	i := 0
	for pos := range s {
		if i == runes {
			return pos
		}
		i++
	}
	return len(s)
}

// Compile builds a snippet from its raw definition. Variables are
// substituted into regex triggers; defaultVersion applies when the
// definition has none.
func Compile(raw RawSnippet, vars Variables, defaultVersion int) (*Snippet, error) {
	return compile(raw, vars, defaultVersion, nil)
}

func compile(raw RawSnippet, vars Variables, defaultVersion int, rt *luaRuntime) (*Snippet, error) {
	if raw.Trigger == "" {
		return nil, ErrEmptyTrigger
	}
	if raw.Replacement == "" && raw.ReplacementFn == "" {
		return nil, ErrNoReplacement
	}

	opts, err := ParseOptions(raw.Options)
	if err != nil {
		return nil, err
	}
	if opts.Visual && opts.Regex {
		return nil, fmt.Errorf("%w: visual snippets need a literal trigger", ErrInvalidOptions)
	}

	s := &Snippet{
		Trigger:     raw.Trigger,
		Options:     opts,
		Flags:       raw.Flags,
		Priority:    raw.Priority,
		Description: raw.Description,
		Version:     cmp.Or(raw.Version, defaultVersion, 2),
	}
	if s.Version != 1 && s.Version != 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidVersion, s.Version)
	}

	for _, pair := range raw.ExcludedEnvironments {
		if len(pair) != 2 || pair[0] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidEnv, pair)
		}
		s.ExcludedEnvironments = append(s.ExcludedEnvironments, mathctx.Environment{Open: pair[0], Close: pair[1]})
	}

	if opts.Regex {
		if err := s.compileRegex(vars); err != nil {
			return nil, err
		}
	}

	if raw.ReplacementFn != "" {
		if rt == nil {
			rt = newLuaRuntime()
		}
		fn, err := rt.compile(raw.ReplacementFn)
		if err != nil {
			return nil, err
		}
		s.fn = fn
		s.fnV1 = s.Version == 1
		return s, nil
	}

	s.Replacement = raw.Replacement
	if s.Version == 1 {
		s.Replacement = ConvertV1(raw.Replacement, s.groups)
	}
	return s, nil
}

func (s *Snippet) compileRegex(vars Variables) error {
	var opt regexp2.RegexOptions
	for _, f := range s.Flags {
		switch f {
		case 'i':
			opt |= regexp2.IgnoreCase
		case 'm':
			opt |= regexp2.Multiline
		case 's':
			opt |= regexp2.Singleline
		case 'u', 'g':
		default:
			return fmt.Errorf("%w: unknown flag %q", ErrInvalidRegex, f)
		}
	}

	re, err := regexp2.Compile("(?:"+vars.Expand(s.Trigger)+")$", opt)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRegex, err)
	}
	re.MatchTimeout = MatchTimeout
	s.regex = re
	s.groups = len(re.GetGroupNumbers()) - 1
	return nil
}

// Set is a compiled list of snippets ordered by priority.
//
// A set is reference counted: ParseAll returns it with one reference,
// Retain adds one and Close drops one. The Lua state of the replacement
// functions is released with the last reference.
type Set struct {
	Snippets []*Snippet
	rt       *luaRuntime
	refs     atomic.Int32
}

// ParseAll compiles every definition. Invalid definitions are skipped and
// reported as *DefinitionError values joined into the returned error.
func ParseAll(raws []RawSnippet, vars Variables, defaultVersion int) (*Set, error) {
	set := &Set{rt: newLuaRuntime()}
	set.refs.Store(1)
	var errs []error
	for i, raw := range raws {
		s, err := compile(raw, vars, defaultVersion, set.rt)
		if err != nil {
			errs = append(errs, &DefinitionError{Index: i, Trigger: raw.Trigger, Err: err})
			continue
		}
		set.Snippets = append(set.Snippets, s)
	}
	slices.SortStableFunc(set.Snippets, func(a, b *Snippet) int {
		return cmp.Compare(b.Priority, a.Priority)
	})
	return set, errors.Join(errs...)
}

// Len returns the number of snippets.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Snippets)
}

// Retain adds a reference. It fails once the set has been released.
func (s *Set) Retain() bool {
	if s == nil {
		return false
	}
	for {
		n := s.refs.Load()
		if n <= 0 {
			return false
		}
		if s.refs.CompareAndSwap(n, n+1) {
			return true
		}
	}
}

// Close drops a reference, releasing the Lua state shared by the set's
// functions with the last one.
func (s *Set) Close() {
	if s == nil || s.rt == nil {
		return
	}
	if s.refs.Add(-1) <= 0 {
		s.rt.close()
	}
}
