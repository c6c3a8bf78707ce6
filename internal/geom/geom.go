// Package geom provides the axis-aligned rectangle model and the distance
// and direction measurements the interaction engine evaluates rules against.
//
// All three distance modes operate on the same Rect type:
//
//   - EdgeToEdge: the collision primitive. Zero means the rectangles touch
//     or overlap; otherwise the Euclidean norm of the per-axis gaps.
//   - CenterToCenter: plain Euclidean distance between centers.
//   - CenterToEdge: distance from A's center to the nearest point on B's
//     boundary. Zero when A's center is inside B. Used for radial/blast
//     style conditions.
//
// The coordinate system has Y growing downward (screen convention). The
// direction angle compensates for this so that 90 degrees means "up".
package geom

import "math"

// Rect is an axis-aligned rectangle: top-left corner plus extent.
type Rect struct {
	X, Y float64
	W, H float64
}

// NewRect creates a rectangle at (x, y) with the given extent.
func NewRect(x, y, w, h float64) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the x-coordinate of the right edge.
func (r Rect) Right() float64 {
	return r.X + r.W
}

// Bottom returns the y-coordinate of the bottom edge.
func (r Rect) Bottom() float64 {
	return r.Y + r.H
}

// Center returns the center point of the rectangle.
func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

// Overlaps reports whether the two rectangles overlap or touch on both
// axes. Touching edges count as overlap, matching EdgeToEdge == 0.
func (r Rect) Overlaps(o Rect) bool {
	return r.X <= o.Right() && o.X <= r.Right() &&
		r.Y <= o.Bottom() && o.Y <= r.Bottom()
}

// Contains reports whether the point (x, y) lies inside the rectangle,
// boundary included.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y <= r.Bottom()
}

// Origin selects which part of a rectangle a distance is measured from.
type Origin string

const (
	// OriginEdge measures from the rectangle's boundary.
	OriginEdge Origin = "edge"
	// OriginCenter measures from the rectangle's center point.
	OriginCenter Origin = "center"
)

// axisGap returns the separation of two intervals on one axis, or 0 if
// the projections overlap or touch.
func axisGap(lo1, hi1, lo2, hi2 float64) float64 {
	if hi1 < lo2 {
		return lo2 - hi1
	}
	if hi2 < lo1 {
		return lo1 - hi2
	}
	return 0
}

// EdgeToEdge returns the shortest distance between the boundaries of a
// and b. The result is exactly 0 when the rectangles touch or overlap on
// both axes; "distance == 0" is the engine's collision condition.
func EdgeToEdge(a, b Rect) float64 {
	dx := axisGap(a.X, a.Right(), b.X, b.Right())
	dy := axisGap(a.Y, a.Bottom(), b.Y, b.Bottom())
	if dx == 0 && dy == 0 {
		return 0
	}
	return math.Hypot(dx, dy)
}

// CenterToCenter returns the Euclidean distance between the centers of a
// and b.
func CenterToCenter(a, b Rect) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	return math.Hypot(bx-ax, by-ay)
}

// CenterToEdge returns the distance from a's center to the nearest point
// on b's boundary: a's center is clamped into b's extent and the distance
// to that clamped point taken. Returns 0 when a's center lies inside b.
func CenterToEdge(a, b Rect) float64 {
	ax, ay := a.Center()
	cx := clamp(ax, b.X, b.Right())
	cy := clamp(ay, b.Y, b.Bottom())
	return math.Hypot(cx-ax, cy-ay)
}

// Distance measures between a and b using the origin selected for each
// side. The four combinations map onto the three modes: edge/edge,
// center/center, center/edge, and edge/center (the latter measured as
// center-to-edge from b's side).
func Distance(a, b Rect, from, to Origin) float64 {
	switch {
	case from == OriginCenter && to == OriginCenter:
		return CenterToCenter(a, b)
	case from == OriginCenter && to == OriginEdge:
		return CenterToEdge(a, b)
	case from == OriginEdge && to == OriginCenter:
		return CenterToEdge(b, a)
	default:
		return EdgeToEdge(a, b)
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
