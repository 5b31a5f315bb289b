// Package radio implements the RSSI channel model and neighbor discovery
// used to mediate agent-to-agent contact.
package radio

import (
	"math"

	"dtnsim/internal/geometry"
)

// Params holds a single agent's detection and connection thresholds, in dBm
// (or whatever unit the configured channel model emits).
type Params struct {
	DetectThresh  float64
	ConnectThresh float64
}

// Source names the configurable rssi_source values recognized in the
// model config.
type Source string

const (
	SourcePathLoss  Source = "path_loss"
	SourceRealData  Source = "real_data"
	SourceShadowing Source = "shadowing"
)

// Model computes RSSI between two positions. All computations that involve
// randomness must consume the simulation's shared RNG for reproducibility.
type Model interface {
	RSSI(a, b geometry.Position) float64
}

// PathLossModel implements the default free-space-ish path loss model:
// rssi = 25*log10(1/d) + N(0, sigma^2), and 0 at d=0.
type PathLossModel struct {
	NoiseStdev float64
	RNG        *geometry.RNG
}

func (m *PathLossModel) RSSI(a, b geometry.Position) float64 {
	d := geometry.Distance(a, b)
	if d == 0 {
		return 0
	}
	noise := 0.0
	if m.RNG != nil && m.NoiseStdev > 0 {
		noise = m.RNG.NormFloat64() * m.NoiseStdev
	}
	return 25*math.Log10(1/d) + noise
}

// Grid is a precomputed 2-D RSSI lookup, indexed by integer-truncated
// coordinates of the midpoint between two agents. Real deployments would
// populate this from field measurements; dtnsim treats it as an opaque
// external collaborator's output, consumed here as-is.
type Grid [][]float64

func (g Grid) at(pos geometry.Position) float64 {
	if len(g) == 0 {
		return 0
	}
	x := clampIdx(int(pos.X), len(g))
	y := clampIdx(int(pos.Y), len(g[x]))
	return g[x][y]
}

func clampIdx(v, n int) int {
	if n == 0 {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

// RealDataModel looks RSSI up directly from a precomputed grid keyed on the
// midpoint between the two agents, rather than computing it analytically.
type RealDataModel struct {
	Grid Grid
}

func (m *RealDataModel) RSSI(a, b geometry.Position) float64 {
	mid := geometry.Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	return m.Grid.at(mid)
}

// ObstacleGrid marks wall cells by integer grid coordinate.
type ObstacleGrid [][]bool

// WallsBetween walks a Bresenham line from a to b and counts obstacle cells
// crossed, not counting the endpoints.
func (o ObstacleGrid) WallsBetween(a, b geometry.Position) int {
	if len(o) == 0 {
		return 0
	}
	x0, y0 := int(a.X), int(a.Y)
	x1, y1 := int(b.X), int(b.Y)

	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	walls := 0
	x, y := x0, y0
	for {
		if (x != x0 || y != y0) && (x != x1 || y != y1) && o.isWall(x, y) {
			walls++
		}
		if x == x1 && y == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
	return walls
}

// IsObstacleCell reports whether pos falls within an obstacle grid cell.
func (o ObstacleGrid) IsObstacleCell(pos geometry.Position) bool {
	return o.isWall(int(pos.X), int(pos.Y))
}

func (o ObstacleGrid) isWall(x, y int) bool {
	if x < 0 || x >= len(o) {
		return false
	}
	row := o[x]
	if y < 0 || y >= len(row) {
		return false
	}
	return row[y]
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// ShadowingModel is a Grid lookup penalized by -100 per obstacle cell
// crossed between the two positions.
type ShadowingModel struct {
	Grid      Grid
	Obstacles ObstacleGrid
}

const wallPenalty = -100.0

func (m *ShadowingModel) RSSI(a, b geometry.Position) float64 {
	mid := geometry.Position{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
	base := m.Grid.at(mid)
	walls := m.Obstacles.WallsBetween(a, b)
	return base + wallPenalty*float64(walls)
}

// Neighbor describes another agent observed via the radio.
type Neighbor struct {
	ID        string
	RSSI      float64
	Connected bool
}

// Candidate is an (id, position) pair the radio considers when discovering
// neighbors; kept separate from any particular agent type.
type Candidate struct {
	ID  string
	Pos geometry.Position
}

// GetNeighbors computes which of the candidates are in radio range of
// selfPos, per the agent's detect/connect thresholds. This is a pure
// function of the inputs, aside from any randomness drawn internally by the
// channel model.
func GetNeighbors(selfPos geometry.Position, params Params, candidates []Candidate, model Model) []Neighbor {
	neighbors := make([]Neighbor, 0, len(candidates))
	for _, c := range candidates {
		rssi := model.RSSI(selfPos, c.Pos)
		if rssi < params.DetectThresh {
			continue
		}
		neighbors = append(neighbors, Neighbor{
			ID:        c.ID,
			RSSI:      rssi,
			Connected: rssi >= params.ConnectThresh,
		})
	}
	return neighbors
}
