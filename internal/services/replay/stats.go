package replay

import (
	"math"
	"sort"

	"SignalAxis/internal/domain/models"
)

// stdEpsilon absorbs float noise so that identical returns yield a zero deviation.
const stdEpsilon = 1e-9

// Aggregate summarizes outcomes and applies presentation rounding.
// Excluded outcomes are always dropped; excludeZero also drops zero returns.
func Aggregate(outcomes []models.RecomputedOutcome, excludeZero bool) models.StatsSummary {
	return Round(Summarize(outcomes, excludeZero))
}

// Summarize is Aggregate without rounding.
func Summarize(outcomes []models.RecomputedOutcome, excludeZero bool) models.StatsSummary {
	rates := make([]float64, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.Included {
			continue
		}
		if excludeZero && o.ProfitRate == 0 {
			continue
		}
		rates = append(rates, o.ProfitRate)
	}
	return SummarizeRates(rates)
}

// SummarizeRates computes full-precision statistics over raw percentage returns.
func SummarizeRates(rates []float64) models.StatsSummary {
	n := len(rates)
	if n == 0 {
		return models.StatsSummary{}
	}

	wins := 0
	sum := 0.0
	maxRate, minRate := rates[0], rates[0]
	for _, r := range rates {
		if r > 0 {
			wins++
		}
		sum += r
		maxRate = math.Max(maxRate, r)
		minRate = math.Min(minRate, r)
	}
	mean := sum / float64(n)

	sq := 0.0
	for _, r := range rates {
		d := r - mean
		sq += d * d
	}
	std := math.Sqrt(sq / float64(n))
	if std < stdEpsilon {
		std = 0
	}
	sharpe := 0.0
	if std > 0 {
		sharpe = mean / std
	}

	return models.StatsSummary{
		TotalSamples:     n,
		WinRate:          float64(wins) / float64(n) * 100,
		AvgProfitRate:    mean,
		StdDeviation:     std,
		SharpeRatio:      sharpe,
		MedianProfitRate: median(rates),
		MaxProfitRate:    maxRate,
		MinProfitRate:    minRate,
		TotalProfitRate:  sum,
	}
}

// Round applies presentation precision: win rate 1dp, std and sharpe 3dp, the rest 2dp.
func Round(s models.StatsSummary) models.StatsSummary {
	s.WinRate = RoundTo(s.WinRate, 1)
	s.AvgProfitRate = RoundTo(s.AvgProfitRate, 2)
	s.StdDeviation = RoundTo(s.StdDeviation, 3)
	s.SharpeRatio = RoundTo(s.SharpeRatio, 3)
	s.MedianProfitRate = RoundTo(s.MedianProfitRate, 2)
	s.MaxProfitRate = RoundTo(s.MaxProfitRate, 2)
	s.MinProfitRate = RoundTo(s.MinProfitRate, 2)
	s.TotalProfitRate = RoundTo(s.TotalProfitRate, 2)
	return s
}

// RoundTo rounds half away from zero to the given number of decimals.
func RoundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	r := math.Round(v*p) / p
	if r == 0 {
		return 0 // drop negative zero
	}
	return r
}

func median(rates []float64) float64 {
	sorted := append([]float64(nil), rates...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}
