package suite

import (
	"slices"
	"strings"
	"unicode"

	"github.com/superle3/snippet-leaf/internal/editor/state"
	"github.com/superle3/snippet-leaf/internal/mathctx"
)

// matrixShortcut handles Tab and Enter inside the configured environments:
// Tab separates cells, Enter ends a row and Shift-Enter leaves the
// equation.
func (h *Handler) matrixShortcut(s *Settings, ctx *mathctx.Context, k Key) (bool, error) {
	env := ctx.EnvironmentName(ctx.Pos)
	if env == "" || !slices.Contains(s.MatrixShortcuts.Environments, env) {
		return false, nil
	}

	switch {
	case k.Name == KeyTab:
		if !ctx.State.Selection.MainRange().Empty() {
			return false, nil
		}
		return true, h.view.ReplaceSelection(" & ", state.UserEventType)

	case k.Name == KeyEnter && k.Shift:
		bounds, ok := ctx.OuterBounds(ctx.Pos)
		if !ok {
			return false, nil
		}
		return true, h.setCursor(bounds.End)

	case k.Name == KeyEnter && ctx.Mode.BlockMath:
		line := ctx.State.Doc.LineAt(ctx.Pos).Text
		indent := line[:len(line)-len(strings.TrimLeftFunc(line, unicode.IsSpace))]
		return true, h.view.ReplaceSelection(" \\\\\n"+indent, state.UserEventType)

	case k.Name == KeyEnter:
		return true, h.view.ReplaceSelection(` \\ `, state.UserEventType)
	}
	return false, nil
}
