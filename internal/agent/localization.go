package agent

import (
	"math"

	"dtnsim/internal/geometry"
)

// MinLocalizationSamples is the minimum number of (pos, rssi) samples
// required before a localization fit is attempted.
const MinLocalizationSamples = 10

// LocalizationHistoryWindow bounds how far back into an agent's history
// the fit looks for samples.
const LocalizationHistoryWindow = 100

// localizationIterations/LearnRate govern the gradient-descent fit below.
const (
	localizationIterations = 200
	localizationLearnRate  = 0.01
)

// Localization holds an agent's RSSI-gradient pursuit state toward an
// unconnected target.
type Localization struct {
	TargetID string

	// Estimate is the most recent fitted (a, b) position, valid only when
	// HasEstimate is true.
	Estimate    geometry.Position
	HasEstimate bool
	C           float64
}

// NewLocalization starts a localization pursuit of targetID.
func NewLocalization(targetID string) *Localization {
	return &Localization{TargetID: targetID}
}

// rssiSample is one (position, measured rssi to target) observation drawn
// from an agent's history.
type rssiSample struct {
	pos  geometry.Position
	rssi float64
}

// Fit attempts to estimate the target's position from the rssi samples
// observed in hist, filtered to those carrying a reading for l.TargetID.
// It mutates l's Estimate on success. Returns false (no-op) if fewer than
// MinLocalizationSamples are available or the fit does not converge to an
// in-bounds estimate.
func (l *Localization) Fit(hist *History, space geometry.Space) bool {
	samples := gatherSamples(hist, l.TargetID)
	if len(samples) < MinLocalizationSamples {
		return false
	}

	a, b, c := fitLeastSquares(samples)
	if math.IsNaN(a) || math.IsNaN(b) || math.IsNaN(c) {
		return false
	}
	est := geometry.Position{X: a, Y: b}
	if space.OutOfBounds(est) {
		return false
	}

	l.Estimate = est
	l.C = c
	l.HasEstimate = true
	return true
}

func gatherSamples(hist *History, targetID string) []rssiSample {
	recent := hist.Recent(LocalizationHistoryWindow)
	var out []rssiSample
	for _, s := range recent {
		for _, n := range s.RadioSnapshot {
			if n.ID == targetID {
				out = append(out, rssiSample{pos: s.Pos, rssi: n.RSSI})
				break
			}
		}
	}
	return out
}

// fitLeastSquares estimates (a, b, c) minimizing
//
//	Σ (rssi_i - 10*c*log10(1/sqrt((a-x_i)^2+(b-y_i)^2)))^2
//
// via gradient descent seeded at (0, 0, 0).
func fitLeastSquares(samples []rssiSample) (a, b, c float64) {
	const eps = 1e-6
	for iter := 0; iter < localizationIterations; iter++ {
		var da, db, dc float64
		for _, s := range samples {
			dx := a - s.pos.X
			dy := b - s.pos.Y
			d2 := dx*dx + dy*dy
			if d2 < eps {
				d2 = eps
			}
			d := math.Sqrt(d2)
			pred := -10 * c * math.Log10(d)
			residual := pred - s.rssi

			// d(pred)/da = -10*c/ln(10) * dx/d2
			lnTerm := 10 / (d2 * math.Ln10)
			da += 2 * residual * (-c * lnTerm * dx)
			db += 2 * residual * (-c * lnTerm * dy)
			dc += 2 * residual * (-10 * math.Log10(d))
		}
		n := float64(len(samples))
		a -= localizationLearnRate * da / n
		b -= localizationLearnRate * db / n
		c -= localizationLearnRate * dc / n
	}
	return a, b, c
}
