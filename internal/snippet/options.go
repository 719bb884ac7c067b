package snippet

import (
	"fmt"

	"github.com/superle3/snippet-leaf/internal/mathctx"
)

// Options is the decoded options string of a snippet.
type Options struct {
	Mode           mathctx.Mode
	Automatic      bool
	Regex          bool
	OnWordBoundary bool
	Visual         bool
}

// ParseOptions decodes an options string such as "mA" or "rw".
//
//	A  expand automatically, without the trigger key
//	r  the trigger is a regular expression
//	w  the trigger must sit between word delimiters
//	v  visual snippet, runs on a selection
//	m  inline and block math
//	n  inline math
//	M  block math
//	t  text
//	c  code
//
// Without any mode flag the snippet runs in text and math.
func ParseOptions(src string) (Options, error) {
	var o Options
	for _, c := range src {
		switch c {
		case 'A':
			o.Automatic = true
		case 'r':
			o.Regex = true
		case 'w':
			o.OnWordBoundary = true
		case 'v':
			o.Visual = true
		case 'm':
			o.Mode.InlineMath = true
			o.Mode.BlockMath = true
		case 'n':
			o.Mode.InlineMath = true
		case 'M':
			o.Mode.BlockMath = true
		case 't':
			o.Mode.Text = true
		case 'c':
			o.Mode.Code = true
		default:
			return Options{}, fmt.Errorf("%w: unknown flag %q in %q", ErrInvalidOptions, c, src)
		}
	}

	if !o.Mode.Any() {
		o.Mode = o.Mode.Invert()
		o.Mode.Code = false
	}
	return o, nil
}

// String encodes the options back into flag form.
func (o Options) String() string {
	var b []byte
	if o.Automatic {
		b = append(b, 'A')
	}
	if o.Regex {
		b = append(b, 'r')
	}
	if o.OnWordBoundary {
		b = append(b, 'w')
	}
	if o.Visual {
		b = append(b, 'v')
	}
	switch {
	case o.Mode.InlineMath && o.Mode.BlockMath:
		b = append(b, 'm')
	case o.Mode.InlineMath:
		b = append(b, 'n')
	case o.Mode.BlockMath:
		b = append(b, 'M')
	}
	if o.Mode.Text {
		b = append(b, 't')
	}
	if o.Mode.Code {
		b = append(b, 'c')
	}
	return string(b)
}

// ShouldRunInMode reports whether a snippet with mode opt may fire in
// context mode m. Math snippets stay out of text arguments unless they
// also allow text.
func ShouldRunInMode(opt, m mathctx.Mode) bool {
	if (opt.InlineMath && m.InlineMath) ||
		(opt.BlockMath && m.BlockMath) ||
		((opt.InlineMath || opt.BlockMath) && m.CodeMath) {
		if !m.TextEnv {
			return true
		}
	}

	if m.InMath() && m.TextEnv && opt.Text {
		return true
	}

	return (opt.Text && m.Text) || (opt.Code && m.Code)
}
