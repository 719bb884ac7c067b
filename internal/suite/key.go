package suite

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Key names besides single characters.
const (
	KeyTab       = "Tab"
	KeyEnter     = "Enter"
	KeyBackspace = "Backspace"
	KeyEscape    = "Escape"
	KeyLeft      = "Left"
	KeyRight     = "Right"
	KeyUndo      = "Undo"
	KeyRedo      = "Redo"
	KeySpace     = " "
)

// ErrBadKey is returned for a key script token that names no key.
var ErrBadKey = errors.New("unknown key")

// Key is one keystroke. Name is either a single character or one of the
// Key constants.
type Key struct {
	Name  string
	Shift bool
	Ctrl  bool
	// IME is set while an input method is composing.
	IME bool
}

// Char reports whether the key types a single character.
func (k Key) Char() bool {
	return utf8.RuneCountInString(k.Name) == 1
}

func (k Key) String() string {
	var b strings.Builder
	if k.Ctrl {
		b.WriteString("C-")
	}
	if k.Shift {
		b.WriteString("S-")
	}
	switch k.Name {
	case KeySpace:
		b.WriteString("Space")
	default:
		b.WriteString(k.Name)
	}
	return b.String()
}

var scriptKeys = map[string]string{
	"Tab":   KeyTab,
	"CR":    KeyEnter,
	"BS":    KeyBackspace,
	"Esc":   KeyEscape,
	"Space": KeySpace,
	"Left":  KeyLeft,
	"Right": KeyRight,
	"Undo":  KeyUndo,
	"Redo":  KeyRedo,
	"lt":    "<",
}

// ParseKeys reads a key script: literal characters plus tokens such as
// <Tab>, <S-Tab>, <CR>, <S-CR>, <BS>, <Esc>, <Space>, <Left>, <Right>,
// <Undo>, <Redo> and <lt> for a literal "<".
func ParseKeys(script string) ([]Key, error) {
	var keys []Key
	for i := 0; i < len(script); {
		if script[i] != '<' {
			r, size := utf8.DecodeRuneInString(script[i:])
			keys = append(keys, Key{Name: string(r)})
			i += size
			continue
		}

		end := strings.IndexByte(script[i:], '>')
		if end < 0 {
			return nil, fmt.Errorf("%w: unterminated %q at %d", ErrBadKey, script[i:], i)
		}
		tok := script[i+1 : i+end]
		var k Key
		for {
			if rest, ok := strings.CutPrefix(tok, "S-"); ok {
				k.Shift, tok = true, rest
			} else if rest, ok := strings.CutPrefix(tok, "C-"); ok {
				k.Ctrl, tok = true, rest
			} else {
				break
			}
		}
		name, ok := scriptKeys[tok]
		if !ok {
			if utf8.RuneCountInString(tok) != 1 {
				return nil, fmt.Errorf("%w: <%s>", ErrBadKey, script[i+1:i+end])
			}
			name = tok
		}
		k.Name = name
		keys = append(keys, k)
		i += end + 1
	}
	return keys, nil
}
