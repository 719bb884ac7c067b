package suite

import (
	"strings"

	"github.com/superle3/snippet-leaf/internal/editor/change"
	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/mathctx"
)

const rangle = `\rangle`

// tabout moves the cursor past the next closing delimiter of the equation,
// or out of the equation when only whitespace is left before its end.
func (h *Handler) tabout(ctx *mathctx.Context) (bool, error) {
	if !ctx.Mode.InMath() {
		return false, nil
	}
	inner, ok := ctx.Bounds(ctx.Pos)
	if !ok {
		return false, nil
	}
	outer, _ := ctx.OuterBounds(ctx.Pos)

	doc := ctx.State.Doc.String()
	pos := ctx.State.Selection.MainRange().To()
	for i := pos; i < inner.End; i++ {
		if strings.IndexByte("})]>|$", doc[i]) >= 0 {
			return true, h.setCursor(i + 1)
		}
		if strings.HasPrefix(doc[i:], rangle) {
			return true, h.setCursor(i + len(rangle))
		}
	}

	if strings.TrimSpace(doc[min(pos, inner.End):inner.End]) != "" {
		return false, nil
	}
	if ctx.Mode.InlineMath {
		return true, h.setCursor(outer.End)
	}

	// Display math: continue on the line after the closing delimiter,
	// adding one at the end of the document.
	st := ctx.State
	line := st.Doc.LineAt(outer.End)
	if line.Number < st.Doc.Lines() {
		return true, h.setCursor(line.To + 1)
	}
	changes, err := change.Of([]change.Spec{{From: line.To, To: line.To, Insert: "\n"}}, st.Doc.Len())
	if err != nil {
		return false, err
	}
	sel := state.NewSelection(state.Cursor(line.To + 1))
	return true, h.view.Dispatch(state.TransactionSpec{Changes: &changes, Selection: &sel, UserEvent: state.UserEventType})
}

// closesBracket reports whether k types the closing bracket right after
// the cursor.
func closesBracket(st *state.State, k Key) bool {
	main := st.Selection.MainRange()
	if !main.Empty() || !isCloseBracket(k.Name) {
		return false
	}
	return st.SliceDoc(main.Head, main.Head+1) == k.Name
}
