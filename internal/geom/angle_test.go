package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unit returns a 10x10 rect whose center sits at (x, y).
func unit(x, y float64) Rect {
	return NewRect(x-5, y-5, 10, 10)
}

func TestAngle_CardinalDirections(t *testing.T) {
	src := unit(100, 100)

	testCases := []struct {
		name string
		b    Rect
		want float64
	}{
		{"right", unit(150, 100), 0},
		{"up", unit(100, 50), 90},
		{"left", unit(50, 100), 180},
		{"down", unit(100, 150), 270},
		{"up-right diagonal", unit(150, 50), 45},
		{"down-left diagonal", unit(50, 150), 225},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.want, Angle(src, tc.b), 1e-9)
		})
	}
}

func TestAngle_NormalizedRange(t *testing.T) {
	src := unit(0, 0)
	// Just below the rightward axis: a small negative atan2 result must
	// normalize into [0, 360), not stay negative.
	deg := Angle(src, unit(100, 1))
	assert.GreaterOrEqual(t, deg, 0.0)
	assert.Less(t, deg, 360.0)
	assert.InDelta(t, 360.0, deg+Angle(src, unit(100, -1)), 1e-6)
}

func TestSpan_HalfOpen(t *testing.T) {
	s := Span{Min: 45, Max: 135}
	assert.True(t, s.Contains(45), "lower bound included")
	assert.True(t, s.Contains(90))
	assert.False(t, s.Contains(135), "upper bound excluded")
	assert.False(t, s.Contains(44.999))
}

func TestSpanSet_EmptyMatchesEverything(t *testing.T) {
	var ss SpanSet
	assert.True(t, ss.Contains(0))
	assert.True(t, ss.Contains(359.9))
}

func TestSpansForEdge_LeftWrapsSeam(t *testing.T) {
	ss, ok := SpansForEdge(EdgeLeft)
	require.True(t, ok)
	require.Len(t, ss, 2, "left spans two disjoint windows across 0/360")

	assert.True(t, ss.Contains(0))
	assert.True(t, ss.Contains(350))
	assert.True(t, ss.Contains(10))
	assert.False(t, ss.Contains(45))
	assert.False(t, ss.Contains(180))
}

func TestSpansForEdge_AllEdges(t *testing.T) {
	testCases := []struct {
		edge    Edge
		inside  float64
		outside float64
	}{
		{EdgeBottom, 90, 270},
		{EdgeTop, 270, 90},
		{EdgeRight, 180, 0},
		{EdgeLeft, 0, 180},
	}

	for _, tc := range testCases {
		t.Run(string(tc.edge), func(t *testing.T) {
			ss, ok := SpansForEdge(tc.edge)
			require.True(t, ok)
			assert.True(t, ss.Contains(tc.inside))
			assert.False(t, ss.Contains(tc.outside))
		})
	}
}

func TestSpansForEdge_UnknownEdge(t *testing.T) {
	_, ok := SpansForEdge(Edge("diagonal"))
	assert.False(t, ok)
}
