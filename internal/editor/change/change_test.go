package change

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/superle3/snippet-leaf/internal/editor/text"
)

// ============================================================================
// Helpers
// ============================================================================

func mustOf(t *testing.T, specs []Spec, length int) Set {
	t.Helper()
	set, err := Of(specs, length)
	require.NoError(t, err)
	return set
}

func apply(t require.TestingT, set Set, doc string) string {
	out, err := set.Apply(text.New(doc))
	require.NoError(t, err)
	return out.String()
}

// specsGen draws non-overlapping specs for a document of the given length.
func specsGen(length int) *rapid.Generator[[]Spec] {
	return rapid.Custom(func(t *rapid.T) []Spec {
		var specs []Spec
		pos := 0
		n := rapid.IntRange(0, 4).Draw(t, "count")
		for i := 0; i < n && pos <= length; i++ {
			from := rapid.IntRange(pos, length).Draw(t, "from")
			to := rapid.IntRange(from, length).Draw(t, "to")
			insert := rapid.StringMatching(`[a-z@{}]{0,4}`).Draw(t, "insert")
			specs = append(specs, Spec{From: from, To: to, Insert: insert})
			pos = to
		}
		return specs
	})
}

// ============================================================================
// Of / Apply
// ============================================================================

func TestOf_Apply(t *testing.T) {
	set := mustOf(t, []Spec{
		{From: 3, To: 4, Insert: "\\frac{}{}"},
		{From: 0, To: 0, Insert: ">"},
	}, 5)

	require.Equal(t, ">$a+\\frac{}{}$", apply(t, set, "$a+/$"))
	require.Equal(t, 5, set.Length())
	require.Equal(t, 14, set.NewLength())
	require.False(t, set.Empty())
}

func TestOf_InsertionsAtSamePointKeepOrder(t *testing.T) {
	set := mustOf(t, []Spec{
		{From: 1, To: 1, Insert: "x"},
		{From: 1, To: 1, Insert: "y"},
	}, 2)

	require.Equal(t, "axyb", apply(t, set, "ab"))
}

func TestOf_Errors(t *testing.T) {
	_, err := Of([]Spec{{From: 1, To: 3}, {From: 2, To: 4}}, 5)
	require.ErrorIs(t, err, ErrOverlap)

	_, err = Of([]Spec{{From: 4, To: 9}}, 5)
	require.ErrorIs(t, err, ErrOutOfRange)

	_, err = mustOf(t, nil, 3).Apply(text.New("ab"))
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEmpty(t *testing.T) {
	set := Empty(4)

	require.True(t, set.Empty())
	require.Equal(t, "abcd", apply(t, set, "abcd"))
	require.Equal(t, 2, set.MapPos(2, 1))
}

// ============================================================================
// MapPos
// ============================================================================

func TestMapPos_Assoc(t *testing.T) {
	// insert "xy" at 2 in "abcd"
	set := mustOf(t, []Spec{{From: 2, To: 2, Insert: "xy"}}, 4)

	require.Equal(t, 1, set.MapPos(1, -1))
	require.Equal(t, 2, set.MapPos(2, -1))
	require.Equal(t, 4, set.MapPos(2, 1))
	require.Equal(t, 5, set.MapPos(3, -1))
}

func TestMapPos_Replacement(t *testing.T) {
	// replace "bc" with "XYZ" in "abcd"
	set := mustOf(t, []Spec{{From: 1, To: 3, Insert: "XYZ"}}, 4)

	require.Equal(t, 1, set.MapPos(1, 1), "start of replaced range stays at start")
	require.Equal(t, 1, set.MapPos(2, -1), "inside maps to start with assoc -1")
	require.Equal(t, 4, set.MapPos(2, 1), "inside maps to end with assoc 1")
	require.Equal(t, 4, set.MapPos(3, -1), "end of replaced range maps past the insert")
	require.Equal(t, 5, set.MapPos(4, 1))
}

// ============================================================================
// Invert / Compose
// ============================================================================

func TestInvert(t *testing.T) {
	doc := "$a+/$"
	set := mustOf(t, []Spec{{From: 3, To: 4, Insert: "//"}}, len(doc))

	inv := set.Invert(text.New(doc))

	require.Equal(t, doc, apply(t, inv, apply(t, set, doc)))
}

func TestCompose_UndoKeypressThenReplace(t *testing.T) {
	// typing "/" after "$a+/" is recorded as replacing "/" with "//"
	orig := "$a+/$"
	keypress := mustOf(t, []Spec{{From: 3, To: 4, Insert: "//"}}, len(orig))
	typed := apply(t, keypress, orig)
	require.Equal(t, "$a+//$", typed)

	replace := mustOf(t, []Spec{{From: 3, To: 4, Insert: "\\frac{}{}"}}, len(orig))
	combined, err := keypress.Invert(text.New(orig)).Compose(replace)
	require.NoError(t, err)

	require.Equal(t, "$a+\\frac{}{}$", apply(t, combined, typed))
	require.Equal(t, 12, combined.MapPos(5, -1), "cursor after the key lands after the replacement")
}

func TestCompose_LengthMismatch(t *testing.T) {
	a := mustOf(t, []Spec{{From: 0, To: 0, Insert: "x"}}, 2)
	b := Empty(2)

	_, err := a.Compose(b)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestTouches(t *testing.T) {
	a := mustOf(t, []Spec{{From: 1, To: 1, Insert: "x"}}, 3)
	adjacent := mustOf(t, []Spec{{From: 2, To: 2, Insert: "y"}}, 4)
	far := mustOf(t, []Spec{{From: 4, To: 4, Insert: "y"}}, 4)

	require.True(t, a.Touches(adjacent))
	require.False(t, a.Touches(far))
}

// ============================================================================
// Properties
// ============================================================================

func TestProperty_InvertRestoresDocument(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := rapid.StringMatching(`[a-z$\\{}]{0,12}`).Draw(t, "doc")
		specs := specsGen(len(doc)).Draw(t, "specs")

		set, err := Of(specs, len(doc))
		require.NoError(t, err)

		changed := apply(t, set, doc)
		require.Equal(t, doc, apply(t, set.Invert(text.New(doc)), changed))
	})
}

func TestProperty_ComposeMatchesSequentialApply(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := rapid.StringMatching(`[a-z$]{0,10}`).Draw(t, "doc")
		first, err := Of(specsGen(len(doc)).Draw(t, "first"), len(doc))
		require.NoError(t, err)

		mid := apply(t, first, doc)
		second, err := Of(specsGen(len(mid)).Draw(t, "second"), len(mid))
		require.NoError(t, err)

		composed, err := first.Compose(second)
		require.NoError(t, err)

		require.Equal(t, apply(t, second, mid), apply(t, composed, doc))
		require.Equal(t, len(doc), composed.Length())
	})
}

func TestProperty_MapPosIsMonotonic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		doc := rapid.StringMatching(`[a-z]{0,10}`).Draw(t, "doc")
		set, err := Of(specsGen(len(doc)).Draw(t, "specs"), len(doc))
		require.NoError(t, err)

		prev := 0
		for pos := 0; pos <= len(doc); pos++ {
			mapped := set.MapPos(pos, -1)
			require.GreaterOrEqual(t, mapped, prev)
			require.LessOrEqual(t, mapped, set.NewLength())
			prev = mapped
		}
	})
}
