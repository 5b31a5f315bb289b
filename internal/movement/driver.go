package movement

import (
	"math"

	"dtnsim/internal/geometry"
	"dtnsim/internal/radio"
	"dtnsim/internal/simerr"
)

// Epsilon is the distance within which an agent is considered to have
// arrived at its current target.
const Epsilon = 0.01

// Driver owns the mutable per-agent movement state: the pattern, the
// current target, and the speed parameters.
type Driver struct {
	Pattern         Pattern
	Speed           float64
	ModelSpeedLimit float64

	target    geometry.Position
	hasTarget bool
}

// NewDriver constructs a driver around a pattern. The first target is drawn
// from the pattern on the first call to Step.
func NewDriver(pattern Pattern, speed, modelSpeedLimit float64) *Driver {
	return &Driver{Pattern: pattern, Speed: speed, ModelSpeedLimit: modelSpeedLimit}
}

// Step advances pos by one tick toward the pattern's target, honoring the
// space's bounds and any obstacle grid. On OutOfBounds or
// SpeedLimitExceeded the move is suppressed and pos is returned unchanged
// along with the corresponding sentinel error; callers should log and
// continue, not abort the simulation.
func (d *Driver) Step(pos geometry.Position, space geometry.Space, obstacles radio.ObstacleGrid) (geometry.Position, error) {
	if !d.hasTarget {
		d.target = d.Pattern.Next()
		d.hasTarget = true
	}

	if geometry.Distance(pos, d.target) <= Epsilon {
		d.target = d.Pattern.Next()
		if d.Pattern.ShouldTeleport() {
			return d.target, nil
		}
	}

	step := clampStep(pos, d.target, d.Speed, d.ModelSpeedLimit)
	magnitude := geometry.Distance(pos, step)
	if magnitude > d.ModelSpeedLimit+1e-9 {
		return pos, simerr.ErrSpeedLimitExceeded
	}

	if space.OutOfBounds(step) || crossesObstacle(pos, step, obstacles) {
		return pos, simerr.ErrOutOfBounds
	}

	return step, nil
}

// clampStep returns the position reached by moving from pos toward target,
// at most speed units, and never more than modelSpeedLimit units.
func clampStep(pos, target geometry.Position, speed, modelSpeedLimit float64) geometry.Position {
	dist := geometry.Distance(pos, target)
	if dist == 0 {
		return pos
	}

	maxStep := math.Min(speed, modelSpeedLimit)
	if dist <= maxStep {
		return target
	}

	ratio := maxStep / dist
	return geometry.Position{
		X: pos.X + (target.X-pos.X)*ratio,
		Y: pos.Y + (target.Y-pos.Y)*ratio,
	}
}

func crossesObstacle(from, to geometry.Position, obstacles radio.ObstacleGrid) bool {
	if len(obstacles) == 0 {
		return false
	}
	return obstacles.WallsBetween(from, to) > 0 || obstacles.IsObstacleCell(to)
}
