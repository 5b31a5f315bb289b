package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"dtnsim/internal/geometry"
	"dtnsim/internal/radio"
)

func TestFitFailsBelowMinSamples(t *testing.T) {
	t.Parallel()

	hist := NewHistory(20)
	for i := 0; i < MinLocalizationSamples-1; i++ {
		hist.Append(Sample{
			Tick:          int64(i),
			Pos:           geometry.Position{X: float64(i)},
			RadioSnapshot: []radio.Neighbor{{ID: "r1", RSSI: -10}},
		})
	}

	l := NewLocalization("r1")
	ok := l.Fit(hist, geometry.NewSpace(100, 100))

	assert.False(t, ok)
	assert.False(t, l.HasEstimate)
}

func TestFitIgnoresSamplesWithoutTargetReading(t *testing.T) {
	t.Parallel()

	hist := NewHistory(20)
	for i := 0; i < MinLocalizationSamples+5; i++ {
		hist.Append(Sample{
			Tick:          int64(i),
			Pos:           geometry.Position{X: float64(i)},
			RadioSnapshot: []radio.Neighbor{{ID: "some-other-router", RSSI: -10}},
		})
	}

	l := NewLocalization("r1")
	ok := l.Fit(hist, geometry.NewSpace(100, 100))

	assert.False(t, ok, "samples that never observe the target id must not count toward the minimum")
}

func TestNewLocalizationStartsWithoutEstimate(t *testing.T) {
	t.Parallel()

	l := NewLocalization("r1")
	assert.Equal(t, "r1", l.TargetID)
	assert.False(t, l.HasEstimate)
}
