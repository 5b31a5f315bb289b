package radio

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dtnsim/internal/geometry"
)

func TestPathLossModelZeroDistance(t *testing.T) {
	t.Parallel()

	m := &PathLossModel{}
	pos := geometry.Position{X: 5, Y: 5}
	assert.Equal(t, 0.0, m.RSSI(pos, pos))
}

func TestPathLossModelDecaysWithDistance(t *testing.T) {
	t.Parallel()

	m := &PathLossModel{}
	near := m.RSSI(geometry.Position{X: 0, Y: 0}, geometry.Position{X: 1, Y: 0})
	far := m.RSSI(geometry.Position{X: 0, Y: 0}, geometry.Position{X: 10, Y: 0})
	assert.Greater(t, near, far)
}

func TestPathLossModelDeterministicWithoutNoise(t *testing.T) {
	t.Parallel()

	m := &PathLossModel{}
	a := geometry.Position{X: 0, Y: 0}
	b := geometry.Position{X: 2, Y: 0}
	assert.Equal(t, m.RSSI(a, b), m.RSSI(a, b))
}

func TestShadowingModelAppliesWallPenalty(t *testing.T) {
	t.Parallel()

	obstacles := ObstacleGrid{
		{false, false, false},
		{true, true, true},
		{false, false, false},
	}
	m := &ShadowingModel{Obstacles: obstacles}
	a := geometry.Position{X: 0, Y: 1}
	b := geometry.Position{X: 2, Y: 1}

	withWall := m.RSSI(a, b)
	mNoWalls := &ShadowingModel{}
	withoutWall := mNoWalls.RSSI(a, b)

	assert.Less(t, withWall, withoutWall)
}

func TestGetNeighborsThresholds(t *testing.T) {
	t.Parallel()

	model := &PathLossModel{}
	params := Params{DetectThresh: -20, ConnectThresh: -5}
	candidates := []Candidate{
		{ID: "near", Pos: geometry.Position{X: 1, Y: 0}},
		{ID: "mid", Pos: geometry.Position{X: 5, Y: 0}},
		{ID: "far", Pos: geometry.Position{X: 1000, Y: 0}},
	}

	neighbors := GetNeighbors(geometry.Position{X: 0, Y: 0}, params, candidates, model)

	byID := make(map[string]Neighbor, len(neighbors))
	for _, n := range neighbors {
		byID[n.ID] = n
	}

	assert.NotContains(t, byID, "far", "below detection threshold must be excluded")
	assert.True(t, byID["near"].Connected)
}

func TestObstacleGridIsObstacleCell(t *testing.T) {
	t.Parallel()

	grid := ObstacleGrid{
		{false, true},
		{false, false},
	}
	assert.True(t, grid.IsObstacleCell(geometry.Position{X: 0, Y: 1}))
	assert.False(t, grid.IsObstacleCell(geometry.Position{X: 1, Y: 0}))
	assert.False(t, grid.IsObstacleCell(geometry.Position{X: 99, Y: 99}), "out of range defaults to no wall")
}
