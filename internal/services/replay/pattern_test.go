package replay

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"SignalAxis/internal/domain/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		win, avg float64
		want     models.PatternCategory
	}{
		{75, 1.2, models.PatternPremium},
		{70, 1.0, models.PatternPremium},
		{70, 0.9, models.PatternExcellent},
		{65, 0.8, models.PatternExcellent},
		{69, 2.0, models.PatternExcellent},
		{60, 0.6, models.PatternGood},
		{64.9, 0.79, models.PatternGood},
		{55, 0.5, models.PatternNormal},
		{90, 0.49, models.PatternCaution},
		{54.9, 3.0, models.PatternCaution},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.win, tc.avg), "win=%v avg=%v", tc.win, tc.avg)
	}
}

func TestIsExcellent_SampleFloorIsSeparate(t *testing.T) {
	s := models.StatsSummary{TotalSamples: 12, WinRate: 60, AvgProfitRate: 0.7}
	assert.True(t, IsExcellent(s, 10))
	assert.False(t, IsExcellent(s, 20))
	assert.Equal(t, models.PatternGood, Classify(s.WinRate, s.AvgProfitRate))

	weak := models.StatsSummary{TotalSamples: 100, WinRate: 54.9, AvgProfitRate: 2}
	assert.False(t, IsExcellent(weak, 10))
}

func TestYearlyStreak(t *testing.T) {
	var occs []models.SignalOccurrence
	add := func(year int, rates ...float64) {
		for i, r := range rates {
			o := occ(1000, 1010, 990, 1000, 0, r)
			o.SignalDate = time.Date(year, 1, i+1, 0, 0, 0, 0, time.UTC)
			occs = append(occs, o)
		}
	}
	add(2019, -1, -1)
	add(2020, 1, 1, -0.2)
	add(2021, 0.8)
	add(2022, 0.6, 0.6)
	add(2023, 2, -0.5, 1)

	_, outcomes := Baseline(occs, models.TradeTypeBuy)
	assert.Equal(t, 4, YearlyStreak(occs, outcomes))

	add(2025, 1)
	_, outcomes = Baseline(occs, models.TradeTypeBuy)
	assert.Equal(t, 4, YearlyStreak(occs, outcomes), "a gap year breaks the run")
}
