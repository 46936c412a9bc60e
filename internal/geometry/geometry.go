// Package geometry contains the pure spatial functions the floor-plan
// editor is built on: grid and angle snapping, axis-aligned overlap and
// containment tests, alignment-guide detection and selection arrangement.
// Nothing in this package holds state and nothing here mutates its inputs.
package geometry

import "math"

// Rect is an axis-aligned rectangle in floor-local coordinates with the
// origin at the top-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Edge accessors.  Right and Bottom are exclusive outer edges.
func (r Rect) Left() float64    { return r.X }
func (r Rect) Right() float64   { return r.X + r.Width }
func (r Rect) Top() float64     { return r.Y }
func (r Rect) Bottom() float64  { return r.Y + r.Height }
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// SnapToGrid rounds v to the nearest multiple of grid.  A grid of zero
// or less disables snapping and returns v unchanged.
func SnapToGrid(v, grid float64) float64 {
	if grid <= 0 {
		return v
	}
	return math.Round(v/grid) * grid
}

// AngleStep is the rotation increment applied while the exact modifier
// is not held.
const AngleStep float64 = 15

// SnapAngle normalizes deg into [0,360) and, unless exact is set, rounds
// it to the nearest multiple of AngleStep.  360 itself normalizes to 0.
func SnapAngle(deg float64, exact bool) float64 {
	if !exact {
		deg = math.Round(deg/AngleStep) * AngleStep
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// BoxesOverlap reports whether two rectangles intersect with positive
// area.  Rotation is deliberately ignored: overlap is tested on the
// axis-aligned bounding boxes, so rotated shapes may report an overlap
// (or a clearance) their true outline does not have.  Touching edges do
// not count as overlap.
func BoxesOverlap(a, b Rect) bool {
	return a.Left() < b.Right() && b.Left() < a.Right() &&
		a.Top() < b.Bottom() && b.Top() < a.Bottom()
}

// Contains reports whether inner lies fully inside outer.  Marquee
// selection and section auto-assignment both require full containment,
// not mere intersection.
func Contains(outer, inner Rect) bool {
	return inner.Left() >= outer.Left() && inner.Right() <= outer.Right() &&
		inner.Top() >= outer.Top() && inner.Bottom() <= outer.Bottom()
}

// OutOfBounds reports whether any edge of r falls outside the floor
// rectangle [0,floorW] x [0,floorH].
func OutOfBounds(r Rect, floorW, floorH float64) bool {
	return r.Left() < 0 || r.Top() < 0 || r.Right() > floorW || r.Bottom() > floorH
}
