package replay

import (
	"sort"

	"SignalAxis/internal/domain/models"
)

type tier struct {
	category models.PatternCategory
	minWin   float64
	minAvg   float64
}

// tiers is evaluated top-down; the first match wins.
var tiers = []tier{
	{models.PatternPremium, 70, 1.0},
	{models.PatternExcellent, 65, 0.8},
	{models.PatternGood, 60, 0.6},
	{models.PatternNormal, 55, 0.5},
}

// Classify maps a win rate and average return (both percent) to a pattern category.
func Classify(winRate, avgProfitRate float64) models.PatternCategory {
	for _, t := range tiers {
		if winRate >= t.minWin && avgProfitRate >= t.minAvg {
			return t.category
		}
	}
	return models.PatternCaution
}

const (
	ExcellentMinWinRate = 55.0
	ExcellentMinAvg     = 0.5
)

// MeetsExcellence checks the rate thresholds without a sample floor.
func MeetsExcellence(s models.StatsSummary) bool {
	return s.WinRate >= ExcellentMinWinRate && s.AvgProfitRate >= ExcellentMinAvg
}

// IsExcellent adds the sample-size floor to MeetsExcellence.
func IsExcellent(s models.StatsSummary, minSamples int) bool {
	return MeetsExcellence(s) && s.TotalSamples >= minSamples
}

// YearlyStreak returns the longest run of consecutive calendar years whose
// baseline outcomes meet the excellence rate thresholds.
func YearlyStreak(occurrences []models.SignalOccurrence, outcomes []models.RecomputedOutcome) int {
	byYear := make(map[int][]models.RecomputedOutcome)
	for i, o := range occurrences {
		if i >= len(outcomes) {
			break
		}
		y := o.SignalDate.Year()
		byYear[y] = append(byYear[y], outcomes[i])
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	best, run, prev := 0, 0, 0
	for _, y := range years {
		s := Aggregate(byYear[y], false)
		if s.TotalSamples == 0 || !MeetsExcellence(s) {
			run = 0
			prev = y
			continue
		}
		if run > 0 && y == prev+1 {
			run++
		} else {
			run = 1
		}
		prev = y
		if run > best {
			best = run
		}
	}
	return best
}
