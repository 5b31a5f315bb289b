package metrics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dtnsim/internal/engine"
)

func TestFromResultsComputesAllThree(t *testing.T) {
	t.Parallel()

	r := engine.Results{
		DeliveredLatencies:      []int64{10, 20, 30},
		NumPickedUpFromGround:   5,
		CumulativeStoredBundles: 100,
		MaxSteps:                50,
	}

	s := FromResults(r)
	assert.Equal(t, 20.0, s.AvgPayloadDeliveryLatency)
	assert.InDelta(t, 0.6, s.DeliverySuccessRate, 1e-9)
	assert.Equal(t, 2.0, s.AvgBundleStorageOverhead)
}

func TestFromResultsNaNOnZeroDenominators(t *testing.T) {
	t.Parallel()

	s := FromResults(engine.Results{})
	assert.True(t, math.IsNaN(s.AvgPayloadDeliveryLatency))
	assert.True(t, math.IsNaN(s.DeliverySuccessRate))
	assert.True(t, math.IsNaN(s.AvgBundleStorageOverhead))
}

func TestAggregateExcludesNaN(t *testing.T) {
	t.Parallel()

	summaries := []Summary{
		{AvgPayloadDeliveryLatency: 10},
		{AvgPayloadDeliveryLatency: math.NaN()},
		{AvgPayloadDeliveryLatency: 20},
	}

	stat := Aggregate(summaries, func(s Summary) float64 { return s.AvgPayloadDeliveryLatency })
	assert.Equal(t, 15.0, stat.Mean)
	assert.Equal(t, 2, stat.N)
}

func TestAggregateAllNaNYieldsNaN(t *testing.T) {
	t.Parallel()

	summaries := []Summary{{AvgPayloadDeliveryLatency: math.NaN()}}
	stat := Aggregate(summaries, func(s Summary) float64 { return s.AvgPayloadDeliveryLatency })
	assert.True(t, math.IsNaN(stat.Mean))
}

func TestAggregateSingleValueZeroStdErr(t *testing.T) {
	t.Parallel()

	summaries := []Summary{{AvgPayloadDeliveryLatency: 42}}
	stat := Aggregate(summaries, func(s Summary) float64 { return s.AvgPayloadDeliveryLatency })
	assert.Equal(t, 42.0, stat.Mean)
	assert.Equal(t, 0.0, stat.StdErr)
}

func TestRenderSingleFormatsUndefinedForNaN(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0).UTC()
	out := RenderSingle("Title", "scenario1", "cgr", ts, Summary{
		AvgPayloadDeliveryLatency: math.NaN(),
		DeliverySuccessRate:       0.5,
		AvgBundleStorageOverhead:  1.25,
	})

	assert.Contains(t, out, "avg_payload_delivery_latency: undefined")
	assert.Contains(t, out, "delivery_success_rate: 0.5000")
	assert.Contains(t, out, "scenario: scenario1")
}

func TestOutputFileNameFormatsPath(t *testing.T) {
	t.Parallel()

	ts := time.Unix(1700000000, 0).UTC()
	name := OutputFileName("scenario1", "cgr", ts)
	require.Contains(t, name, "scenario1")
	require.Contains(t, name, "cgr")
	assert.Contains(t, name, "out/")
}
