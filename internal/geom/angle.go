package geom

import "math"

// Angle returns the direction from a's center toward b's center, in
// degrees normalized into [0, 360).
//
// The vertical delta is negated because screen coordinates grow downward
// while the angle convention treats "up" as 90. A target directly right
// of the source is 0, up is 90, left is 180, down is 270.
func Angle(a, b Rect) float64 {
	ax, ay := a.Center()
	bx, by := b.Center()
	deg := math.Atan2(-(by - ay), bx-ax) * 180 / math.Pi
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Span is a half-open angle window [Min, Max) in degrees. Both bounds
// must already be normalized into [0, 360); a window never wraps the
// 0/360 seam on its own - wrapping conditions are expressed as a SpanSet
// of two windows.
type Span struct {
	Min, Max float64
}

// Contains reports whether deg falls inside the window.
func (s Span) Contains(deg float64) bool {
	return deg >= s.Min && deg < s.Max
}

// SpanSet is a union of angle windows. A direction condition matches if
// any window contains the measured angle. The multi-window form exists
// so that conditions spanning the 0/360 seam (the "left" screen edge)
// are representable exactly instead of degrading to "no constraint".
type SpanSet []Span

// Contains reports whether any window in the set contains deg.
// An empty set imposes no constraint and matches everything.
func (ss SpanSet) Contains(deg float64) bool {
	if len(ss) == 0 {
		return true
	}
	for _, s := range ss {
		if s.Contains(deg) {
			return true
		}
	}
	return false
}

// Edge names a screen edge usable as author-facing shorthand for an
// angle window plus an implied touch (distance zero) condition.
type Edge string

const (
	EdgeTop    Edge = "top"
	EdgeBottom Edge = "bottom"
	EdgeLeft   Edge = "left"
	EdgeRight  Edge = "right"
)

// edgeSpans maps each screen edge to its angle windows: bottom reads as
// "coming from below". Each edge shorthand additionally implies a
// distance-zero condition; that expansion happens in the rule parser.
var edgeSpans = map[Edge]SpanSet{
	EdgeBottom: {{Min: 45, Max: 135}},
	EdgeTop:    {{Min: 225, Max: 315}},
	EdgeRight:  {{Min: 135, Max: 225}},
	// Left genuinely spans two disjoint windows across the 0/360 seam.
	EdgeLeft: {{Min: 315, Max: 360}, {Min: 0, Max: 45}},
}

// SpansForEdge returns the angle windows for a named screen edge and
// whether the name is known.
func SpansForEdge(e Edge) (SpanSet, bool) {
	ss, ok := edgeSpans[e]
	return ss, ok
}
