package movement

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtnsim/internal/geometry"
	"dtnsim/internal/radio"
	"dtnsim/internal/simerr"
)

func TestDriverStepsTowardTarget(t *testing.T) {
	t.Parallel()

	pattern := NewFixed(geometry.Position{X: 10, Y: 0})
	d := NewDriver(pattern, 1, 1)
	space := geometry.NewSpace(100, 100)

	next, err := d.Step(geometry.Position{X: 0, Y: 0}, space, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, next.X, 1e-9)
	assert.InDelta(t, 0, next.Y, 1e-9)
}

func TestDriverArrivesExactlyAtTarget(t *testing.T) {
	t.Parallel()

	pattern := NewFixed(geometry.Position{X: 0.5, Y: 0})
	d := NewDriver(pattern, 5, 5)
	space := geometry.NewSpace(100, 100)

	next, err := d.Step(geometry.Position{X: 0, Y: 0}, space, nil)
	require.NoError(t, err)
	assert.Equal(t, pattern.Pos, next)
}

func TestDriverRejectsOutOfBoundsMove(t *testing.T) {
	t.Parallel()

	pattern := NewFixed(geometry.Position{X: 1000, Y: 0})
	d := NewDriver(pattern, 50, 50)
	space := geometry.NewSpace(10, 10)

	next, err := d.Step(geometry.Position{X: 0, Y: 0}, space, nil)
	assert.True(t, errors.Is(err, simerr.ErrOutOfBounds))
	assert.Equal(t, geometry.Position{X: 0, Y: 0}, next, "position must be unchanged on a suppressed move")
}

func TestDriverClampsToModelSpeedLimit(t *testing.T) {
	t.Parallel()

	pattern := NewFixed(geometry.Position{X: 10, Y: 0})
	d := NewDriver(pattern, 10, 1)
	space := geometry.NewSpace(100, 100)

	next, err := d.Step(geometry.Position{X: 0, Y: 0}, space, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1, geometry.Distance(geometry.Position{X: 0, Y: 0}, next), 1e-9,
		"a configured speed above the model limit must be clamped down, not rejected")
}

func TestDriverRejectsObstacleCrossing(t *testing.T) {
	t.Parallel()

	pattern := NewFixed(geometry.Position{X: 2, Y: 0})
	d := NewDriver(pattern, 5, 5)
	space := geometry.NewSpace(100, 100)
	obstacles := radio.ObstacleGrid{
		{false},
		{true},
		{false},
	}

	_, err := d.Step(geometry.Position{X: 0, Y: 0}, space, obstacles)
	assert.True(t, errors.Is(err, simerr.ErrOutOfBounds))
}
