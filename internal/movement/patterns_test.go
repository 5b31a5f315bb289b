package movement

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"dtnsim/internal/geometry"
)

func TestFixedNeverMoves(t *testing.T) {
	t.Parallel()

	f := NewFixed(geometry.Position{X: 3, Y: 4})
	assert.Equal(t, geometry.Position{X: 3, Y: 4}, f.Next())
	assert.Equal(t, geometry.Position{X: 3, Y: 4}, f.Next())
	assert.False(t, f.ShouldTeleport())
}

func TestWaypointsOneShotStopsAtLast(t *testing.T) {
	t.Parallel()

	pts := []geometry.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	w := NewWaypoints(pts, false, false)

	assert.Equal(t, pts[0], w.Next())
	assert.Equal(t, pts[1], w.Next())
	assert.Equal(t, pts[2], w.Next())
	assert.Equal(t, pts[2], w.Next(), "one-shot pattern should hold at the final waypoint")
	assert.False(t, w.ShouldTeleport())
}

func TestWaypointsRepeatTeleportsOnWrap(t *testing.T) {
	t.Parallel()

	pts := []geometry.Position{{X: 0, Y: 0}, {X: 1, Y: 0}}
	w := NewWaypoints(pts, false, true)

	assert.Equal(t, pts[0], w.Next())
	assert.Equal(t, pts[1], w.Next())
	assert.False(t, w.ShouldTeleport())

	assert.Equal(t, pts[0], w.Next())
	assert.True(t, w.ShouldTeleport(), "wrapping from last to first waypoint must teleport")
}

func TestWaypointsBounceReverses(t *testing.T) {
	t.Parallel()

	pts := []geometry.Position{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0}}
	w := NewWaypoints(pts, true, false)

	assert.Equal(t, pts[0], w.Next())
	assert.Equal(t, pts[1], w.Next())
	assert.Equal(t, pts[2], w.Next())
	assert.Equal(t, pts[1], w.Next(), "bounce must reverse direction at the last waypoint")
	assert.Equal(t, pts[0], w.Next())
	assert.False(t, w.ShouldTeleport())
}

func TestCircleStepsAroundCenter(t *testing.T) {
	t.Parallel()

	c := NewCircle(geometry.Position{X: 0, Y: 0}, 1, math.Pi/2)
	p1 := c.Next()
	assert.InDelta(t, 0, p1.X, 1e-9)
	assert.InDelta(t, 1, p1.Y, 1e-9)
	assert.False(t, c.ShouldTeleport())

	p2 := c.Next()
	assert.InDelta(t, -1, p2.X, 1e-9)
	assert.InDelta(t, 0, p2.Y, 1e-9)
}

func TestSpiralGrowsWithAngle(t *testing.T) {
	t.Parallel()

	s := NewSpiral(geometry.Position{X: 0, Y: 0}, 1, math.Pi/2)
	p1 := s.Next()
	r1 := geometry.Distance(geometry.Position{}, p1)

	s2 := NewSpiral(geometry.Position{X: 0, Y: 0}, 1, math.Pi/2)
	s2.Next()
	p2 := s2.Next()
	r2 := geometry.Distance(geometry.Position{}, p2)

	assert.Greater(t, r2, r1, "spiral radius must grow with accumulated angle")
}

func TestArcStopsAtEndpoint(t *testing.T) {
	t.Parallel()

	a := NewArc(
		geometry.Position{X: 0, Y: 0},
		geometry.Position{X: 1, Y: 1},
		geometry.Position{X: 2, Y: 0},
		0.5,
	)
	a.Next()
	a.Next()
	final := a.Next()
	assert.InDelta(t, 2, final.X, 1e-9)
	assert.InDelta(t, 0, final.Y, 1e-9)

	again := a.Next()
	assert.Equal(t, final, again, "arc must hold at t=1 once reached")
}

func TestSplineTeleportsOnLoop(t *testing.T) {
	t.Parallel()

	pts := []geometry.Position{{X: 0, Y: 0}, {X: 10, Y: 0}}
	s := NewSpline(pts, 5)

	var sawTeleport bool
	for i := 0; i < len(s.samples)+1; i++ {
		s.Next()
		if s.ShouldTeleport() {
			sawTeleport = true
			break
		}
	}
	assert.True(t, sawTeleport, "spline must loop back to its first sample and report a teleport")
}
