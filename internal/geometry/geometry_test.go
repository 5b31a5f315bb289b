package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	d := Distance(Position{X: 0, Y: 0}, Position{X: 3, Y: 4})
	assert.InDelta(t, 5.0, d, 1e-9)
}

func TestOutOfBounds(t *testing.T) {
	t.Parallel()

	space := NewSpace(100, 100)

	testCases := []struct {
		name string
		pos  Position
		want bool
	}{
		{"inside", Position{X: 50, Y: 50}, false},
		{"at origin", Position{X: 0, Y: 0}, false},
		{"negative x", Position{X: -1, Y: 10}, true},
		{"at width edge", Position{X: 100, Y: 10}, true},
		{"beyond height", Position{X: 10, Y: 150}, true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, space.OutOfBounds(tc.pos))
		})
	}
}

func TestClampStaysInBounds(t *testing.T) {
	t.Parallel()

	space := NewSpace(100, 100)
	clamped := space.Clamp(Position{X: 150, Y: -10})
	assert.False(t, space.OutOfBounds(clamped))
	assert.Less(t, clamped.X, 100.0)
	assert.Equal(t, 0.0, clamped.Y)
}

func TestRNGDeterministicForSameSeed(t *testing.T) {
	t.Parallel()

	a := NewRNG(42)
	b := NewRNG(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestRNGDiffersAcrossSeeds(t *testing.T) {
	t.Parallel()

	a := NewRNG(1)
	b := NewRNG(2)

	same := true
	for i := 0; i < 10; i++ {
		if a.Float64() != b.Float64() {
			same = false
		}
	}
	assert.False(t, same)
}
