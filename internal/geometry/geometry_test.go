package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSnapToGrid(t *testing.T) {
	grids := []float64{1, 5, 10, 20, 25}
	values := []float64{-137, -1, 0, 3, 7.4, 12.5, 99, 240.2, 1013}
	for _, g := range grids {
		for _, v := range values {
			snapped := SnapToGrid(v, g)
			rem := math.Mod(snapped, g)
			require.InDelta(t, 0, math.Min(math.Abs(rem), g-math.Abs(rem)), 1e-9,
				"snap(%v,%v)=%v is not on the grid", v, g, snapped)
			require.LessOrEqual(t, math.Abs(snapped-v), g/2+1e-9)
		}
	}
	// grid <= 0 disables snapping
	require.Equal(t, 7.3, SnapToGrid(7.3, 0))
	require.Equal(t, 7.3, SnapToGrid(7.3, -4))
}

func TestSnapAngle(t *testing.T) {
	cases := []struct {
		in    float64
		exact bool
		want  float64
	}{
		{0, false, 0},
		{7, false, 0},
		{8, false, 15},
		{44, false, 45},
		{359, false, 0},   // rounds to 360, normalizes to 0
		{-15, false, 345}, // negative input normalizes
		{370, false, 15},
		{91.7, true, 91.7}, // exact modifier skips rounding
		{-90, true, 270},
	}
	for _, c := range cases {
		require.InDelta(t, c.want, SnapAngle(c.in, c.exact), 1e-9, "snapAngle(%v, exact=%v)", c.in, c.exact)
	}
}

func TestBoxesOverlap(t *testing.T) {
	// Two 140x90 tables at (240,320) and (260,320) overlap.
	a := Rect{X: 240, Y: 320, Width: 140, Height: 90}
	b := Rect{X: 260, Y: 320, Width: 140, Height: 90}
	require.True(t, BoxesOverlap(a, b))
	require.True(t, BoxesOverlap(b, a))

	// After the auto-fix offset (240+140+20 = 400) they clear.
	b.X = 400
	require.False(t, BoxesOverlap(a, b))

	// Touching edges do not count as overlap.
	require.False(t, BoxesOverlap(Rect{0, 0, 100, 100}, Rect{100, 0, 100, 100}))
}

func TestContainsAndBounds(t *testing.T) {
	outer := Rect{X: 0, Y: 0, Width: 200, Height: 150}
	require.True(t, Contains(outer, Rect{X: 10, Y: 10, Width: 50, Height: 50}))
	require.True(t, Contains(outer, outer))
	require.False(t, Contains(outer, Rect{X: 180, Y: 10, Width: 50, Height: 50}))

	require.False(t, OutOfBounds(Rect{X: 0, Y: 0, Width: 200, Height: 150}, 200, 150))
	require.True(t, OutOfBounds(Rect{X: -1, Y: 0, Width: 50, Height: 50}, 200, 150))
	require.True(t, OutOfBounds(Rect{X: 160, Y: 0, Width: 50, Height: 50}, 200, 150))
	require.True(t, OutOfBounds(Rect{X: 0, Y: 120, Width: 50, Height: 50}, 200, 150))
}

func TestDetectAlignmentGuides(t *testing.T) {
	moving := []Item{{ID: "t1", Rect: Rect{X: 102, Y: 50, Width: 80, Height: 80}}}
	static := []Item{
		{ID: "t2", Rect: Rect{X: 100, Y: 300, Width: 80, Height: 80}}, // left edges within 5
		{ID: "t3", Rect: Rect{X: 400, Y: 52, Width: 80, Height: 80}},  // top edges within 5
	}
	guides := DetectAlignmentGuides(moving, static, GuideThreshold)
	require.NotEmpty(t, guides)

	var vertical, horizontal bool
	for _, g := range guides {
		if g.Axis == Vertical && g.Position == 100 {
			vertical = true
			require.ElementsMatch(t, []string{"t1", "t2"}, g.IDs)
		}
		if g.Axis == Horizontal && g.Position == 52 {
			horizontal = true
			require.ElementsMatch(t, []string{"t1", "t3"}, g.IDs)
		}
	}
	require.True(t, vertical, "expected a vertical guide at the shared left edge")
	require.True(t, horizontal, "expected a horizontal guide at the shared top edge")

	// Far-apart entities produce no guides.
	none := DetectAlignmentGuides(
		[]Item{{ID: "a", Rect: Rect{X: 0, Y: 0, Width: 10, Height: 10}}},
		[]Item{{ID: "b", Rect: Rect{X: 500, Y: 500, Width: 10, Height: 10}}},
		GuideThreshold,
	)
	require.Empty(t, none)
}

func TestDistributeHorizontal(t *testing.T) {
	items := []Item{
		{ID: "a", Rect: Rect{X: 100, Y: 0, Width: 100, Height: 50}},
		{ID: "b", Rect: Rect{X: 250, Y: 0, Width: 100, Height: 50}},
		{ID: "c", Rect: Rect{X: 600, Y: 0, Width: 100, Height: 50}},
	}
	placements, err := Distribute(items, Horizontal)
	require.NoError(t, err)
	require.Len(t, placements, 3)

	byID := map[string]Placement{}
	for _, p := range placements {
		byID[p.ID] = p
	}
	// First and last keep their positions; the interior member is spaced
	// so both gaps equal 150.
	require.Equal(t, 100.0, byID["a"].X)
	require.Equal(t, 350.0, byID["b"].X)
	require.Equal(t, 600.0, byID["c"].X)
	gap1 := byID["b"].X - (byID["a"].X + 100)
	gap2 := byID["c"].X - (byID["b"].X + 100)
	require.InDelta(t, gap1, gap2, 1e-9)
}

func TestDistributeRequiresThree(t *testing.T) {
	items := []Item{
		{ID: "a", Rect: Rect{X: 0, Y: 0, Width: 10, Height: 10}},
		{ID: "b", Rect: Rect{X: 50, Y: 0, Width: 10, Height: 10}},
	}
	_, err := Distribute(items, Horizontal)
	require.ErrorIs(t, err, ErrInsufficientSelection)
}

func TestAlign(t *testing.T) {
	items := []Item{
		{ID: "a", Rect: Rect{X: 100, Y: 20, Width: 40, Height: 40}},
		{ID: "b", Rect: Rect{X: 160, Y: 90, Width: 60, Height: 40}},
	}
	left, err := Align(items, AlignLeft)
	require.NoError(t, err)
	for _, p := range left {
		require.Equal(t, 100.0, p.X)
	}

	right, err := Align(items, AlignRight)
	require.NoError(t, err)
	byID := map[string]Placement{}
	for _, p := range right {
		byID[p.ID] = p
	}
	require.Equal(t, 180.0, byID["a"].X) // 220 - width 40
	require.Equal(t, 160.0, byID["b"].X)

	_, err = Align(items[:1], AlignLeft)
	require.ErrorIs(t, err, ErrInsufficientSelection)
}
