package geom

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEdgeToEdge_OverlapIsZero(t *testing.T) {
	testCases := []struct {
		name string
		a, b Rect
	}{
		{"full overlap", NewRect(0, 0, 16, 16), NewRect(10, 10, 70, 25)},
		{"contained", NewRect(10, 10, 5, 5), NewRect(0, 0, 100, 100)},
		{"identical", NewRect(3, 4, 10, 10), NewRect(3, 4, 10, 10)},
		{"touching right edge", NewRect(0, 0, 10, 10), NewRect(10, 0, 10, 10)},
		{"touching corner", NewRect(0, 0, 10, 10), NewRect(10, 10, 10, 10)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Zero(t, EdgeToEdge(tc.a, tc.b))
			assert.True(t, tc.a.Overlaps(tc.b), "Overlaps must agree with EdgeToEdge == 0")
		})
	}
}

func TestEdgeToEdge_SeparatedRects(t *testing.T) {
	// Separated on x only: gap is purely horizontal.
	a := NewRect(0, 0, 10, 10)
	b := NewRect(15, 0, 10, 10)
	assert.InDelta(t, 5.0, EdgeToEdge(a, b), 1e-9)
	assert.False(t, a.Overlaps(b))

	// Separated on both axes: Euclidean norm of the two gaps (3-4-5).
	c := NewRect(13, 14, 10, 10)
	assert.InDelta(t, 5.0, EdgeToEdge(a, c), 1e-9)
}

func TestEdgeToEdge_Symmetric(t *testing.T) {
	a := NewRect(0, 0, 8, 8)
	b := NewRect(20, 30, 4, 4)
	assert.Equal(t, EdgeToEdge(a, b), EdgeToEdge(b, a))
}

func TestCenterToCenter(t *testing.T) {
	a := NewRect(0, 0, 10, 10)   // center (5, 5)
	b := NewRect(30, 45, 10, 10) // center (35, 50)
	assert.InDelta(t, math.Sqrt(30*30+45*45), CenterToCenter(a, b), 1e-9)
	assert.Zero(t, CenterToCenter(a, a))
}

func TestCenterToEdge(t *testing.T) {
	b := NewRect(10, 10, 20, 20)

	// Center inside b: zero.
	inside := NewRect(14, 14, 4, 4)
	assert.Zero(t, CenterToEdge(inside, b))

	// Center directly left of b: distance to the clamped boundary point.
	left := NewRect(0, 18, 4, 4) // center (2, 20)
	assert.InDelta(t, 8.0, CenterToEdge(left, b), 1e-9)

	// Diagonal: clamps to b's corner (10, 10) from center (2, 4).
	diag := NewRect(0, 2, 4, 4)
	assert.InDelta(t, 10.0, CenterToEdge(diag, b), 1e-9)
}

func TestDistance_OriginCombinations(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 0, 10, 10)

	testCases := []struct {
		name     string
		from, to Origin
		want     float64
	}{
		{"edge to edge", OriginEdge, OriginEdge, 10},
		{"center to center", OriginCenter, OriginCenter, 20},
		{"center to edge", OriginCenter, OriginEdge, 15},
		{"edge to center", OriginEdge, OriginCenter, 15},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Distance(a, b, tc.from, tc.to), 1e-9)
		})
	}
}

func TestDistance_DefaultsToEdgeToEdge(t *testing.T) {
	a := NewRect(0, 0, 10, 10)
	b := NewRect(20, 0, 10, 10)
	assert.Equal(t, EdgeToEdge(a, b), Distance(a, b, "", ""))
}

func TestRect_Contains(t *testing.T) {
	r := NewRect(10, 10, 20, 20)
	assert.True(t, r.Contains(15, 15))
	assert.True(t, r.Contains(10, 10), "boundary is inside")
	assert.True(t, r.Contains(30, 30), "far boundary is inside")
	assert.False(t, r.Contains(31, 15))
	assert.False(t, r.Contains(15, 9))
}
