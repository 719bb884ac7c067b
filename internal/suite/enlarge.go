package suite

import (
	"strings"

	"github.com/superle3/snippet-leaf/internal/expansion"
	"github.com/superle3/snippet-leaf/internal/mathctx"
)

var enlargePairs = []struct{ open, close string }{
	{"(", ")"},
	{"[", "]"},
	{`\{`, `\}`},
	{`\langle`, `\rangle`},
	{`\lvert`, `\rvert`},
	{`\lVert`, `\rVert`},
	{`\lceil`, `\rceil`},
	{`\lfloor`, `\rfloor`},
}

// typeCloseBracket types the bracket and enlarges the brackets of the
// equation.
func (h *Handler) typeCloseBracket(s *Settings, k Key) (bool, error) {
	if err := h.view.InsertText(k.Name); err != nil {
		return false, err
	}
	if _, err := h.enlargeBrackets(s.AutoEnlarge.Triggers); err != nil {
		return true, err
	}
	return true, nil
}

// enlargeBrackets rewrites every bracket pair of the equation at the cursor
// whose content uses one of the trigger commands as \left ... \right.
func (h *Handler) enlargeBrackets(triggers []string) (bool, error) {
	ctx := mathctx.FromState(h.view.State())
	bounds, ok := ctx.Bounds(ctx.Pos)
	if !ok {
		return false, nil
	}

	text := ctx.State.SliceDoc(bounds.Start, bounds.End)
	for i := 0; i < len(text); i++ {
		var open, closing string
		for _, p := range enlargePairs {
			if strings.HasPrefix(text[i:], p.open) {
				open, closing = p.open, p.close
				break
			}
		}
		if open == "" {
			continue
		}

		j := mathctx.FindMatchingBracket(text, i, open, closing, false)
		if j == -1 {
			continue
		}
		if strings.HasSuffix(text[:i], `\left`) && strings.HasSuffix(text[:j], `\right`) {
			continue
		}
		if !containsTrigger(text[i+len(open):j], triggers) {
			i = j
			continue
		}

		q := h.engine.Queue()
		_ = q.Push(expansion.NewChangeSpec(bounds.Start+i, bounds.Start+i+len(open), `\left`+open+" ", ""))
		_ = q.Push(expansion.NewChangeSpec(bounds.Start+j, bounds.Start+j+len(closing), ` \right`+closing, ""))
	}
	return h.engine.Expand()
}
