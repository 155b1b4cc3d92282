package replay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SignalAxis/internal/domain/models"
)

func included(rates ...float64) []models.RecomputedOutcome {
	out := make([]models.RecomputedOutcome, len(rates))
	for i, r := range rates {
		out[i] = models.RecomputedOutcome{ProfitRate: r, Included: true}
	}
	return out
}

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, models.StatsSummary{}, Aggregate(nil, true))
	assert.Equal(t, models.StatsSummary{}, Aggregate([]models.RecomputedOutcome{}, false))
}

func TestAggregate_AllExcludedIsEmpty(t *testing.T) {
	outcomes := []models.RecomputedOutcome{{Included: false}, {Included: false}}
	assert.Equal(t, 0, Aggregate(outcomes, false).TotalSamples)
}

func TestAggregate_Median(t *testing.T) {
	assert.Equal(t, 2.0, Aggregate(included(3, 1, 2), false).MedianProfitRate)
	assert.Equal(t, 2.5, Aggregate(included(4, 1, 3, 2), false).MedianProfitRate)
}

func TestAggregate_ZeroVarianceSharpe(t *testing.T) {
	s := Aggregate(included(0.3, 0.3, 0.3, 0.3, 0.3), false)
	assert.Equal(t, 5, s.TotalSamples)
	assert.Zero(t, s.StdDeviation)
	assert.Zero(t, s.SharpeRatio)
	assert.False(t, math.IsNaN(s.SharpeRatio))

	single := Aggregate(included(2.5), false)
	assert.Zero(t, single.SharpeRatio)
}

func TestAggregate_ExcludeZero(t *testing.T) {
	outcomes := append(included(1, 0, -1, 0, 2), models.RecomputedOutcome{Included: false, ProfitRate: 0})

	keep := Aggregate(outcomes, false)
	assert.Equal(t, 5, keep.TotalSamples)
	assert.Equal(t, 40.0, keep.WinRate)

	drop := Aggregate(outcomes, true)
	assert.Equal(t, 3, drop.TotalSamples)
	assert.Equal(t, 66.7, drop.WinRate)
}

func TestAggregate_Statistics(t *testing.T) {
	s := Aggregate(included(2, 0, 4, 0), false)
	require.Equal(t, 4, s.TotalSamples)
	assert.Equal(t, 50.0, s.WinRate)
	assert.Equal(t, 1.5, s.AvgProfitRate)

	// mean 1, population variance (1+1+9+1)/4 = 3
	s = Aggregate(included(2, 2, -2, 2), false)
	assert.Equal(t, 1.0, s.AvgProfitRate)
	assert.Equal(t, 75.0, s.WinRate)
	assert.Equal(t, 1.732, s.StdDeviation)
	assert.Equal(t, 0.577, s.SharpeRatio)
	assert.Equal(t, 2.0, s.MedianProfitRate)
	assert.Equal(t, 2.0, s.MaxProfitRate)
	assert.Equal(t, -2.0, s.MinProfitRate)
	assert.Equal(t, 4.0, s.TotalProfitRate)
}

func TestSummarize_FullPrecision(t *testing.T) {
	s := Summarize(included(1, 1, 2), false)
	assert.InDelta(t, 4.0/3.0, s.AvgProfitRate, 1e-12)
	assert.Equal(t, 100.0, s.WinRate)
	assert.Equal(t, 1.33, Round(s).AvgProfitRate)

	s = Summarize(included(2, 2, -1), false)
	assert.InDelta(t, 200.0/3.0, s.WinRate, 1e-12)
	assert.InDelta(t, math.Sqrt2, s.StdDeviation, 1e-12)
	assert.Equal(t, 66.7, Round(s).WinRate)
}

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 0.13, RoundTo(0.125, 2))
	assert.Equal(t, -0.13, RoundTo(-0.125, 2))
	assert.Equal(t, 66.7, RoundTo(66.666, 1))
	assert.False(t, math.Signbit(RoundTo(-0.0001, 2)))
}
