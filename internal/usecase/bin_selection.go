package usecase

import (
	"context"
	"fmt"
	"sort"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
)

type BinStats struct {
	SignalBin     int     `json:"signal_bin"`
	WinRate       float64 `json:"win_rate"`
	AvgProfitRate float64 `json:"avg_profit"`
	SampleCount   int     `json:"sample_count"`
	SharpeRatio   float64 `json:"sharpe_ratio"`
	IsExcellent   bool    `json:"is_excellent"`
	IsTomorrow    bool    `json:"is_tomorrow"`
}

// SignalTypeBins lists the learning statistics of every bin of a signal type.
type SignalTypeBins struct {
	SignalType         string     `json:"signal_type"`
	TomorrowBins       []int      `json:"tomorrow_bins"`
	ExcellentBinsCount int        `json:"excellent_bins_count"`
	Bins               []BinStats `json:"bins"`
}

type BinSelectionResult struct {
	StockCode   string           `json:"stock_code"`
	StockName   string           `json:"stock_name"`
	TradeType   models.TradeType `json:"trade_type"`
	TradingDate string           `json:"target_date"`
	SignalTypes []SignalTypeBins `json:"signal_types"`
}

// BinSelection shows, for each signal type firing tomorrow, how its bins performed.
type BinSelection struct {
	calendar  domrepo.SignalCalendar
	snapshots domrepo.SnapshotStore
	settings  Settings
}

func NewBinSelection(calendar domrepo.SignalCalendar, snapshots domrepo.SnapshotStore, s Settings) *BinSelection {
	return &BinSelection{calendar: calendar, snapshots: snapshots, settings: s}
}

func (b *BinSelection) Details(ctx context.Context, stockCode string, tt models.TradeType) (*BinSelectionResult, error) {
	date, err := b.calendar.NextTradingDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("next trading date: %w", err)
	}
	fired, err := b.calendar.FiredSignals(ctx, date, stockCode)
	if err != nil {
		return nil, fmt.Errorf("fired signals: %w", err)
	}
	if len(fired) == 0 {
		return nil, ErrNothingFires
	}

	res := &BinSelectionResult{
		StockCode:   stockCode,
		TradeType:   tt,
		TradingDate: date.Format("2006-01-02"),
	}
	tomorrow := make(map[string]map[int]bool)
	for _, f := range fired {
		if f.TradeType != "" && f.TradeType != tt {
			continue
		}
		if tomorrow[f.SignalType] == nil {
			tomorrow[f.SignalType] = make(map[int]bool)
		}
		tomorrow[f.SignalType][f.SignalBin] = true
		if res.StockName == "" {
			res.StockName = f.StockName
		}
	}
	if len(tomorrow) == 0 {
		return nil, ErrNothingFires
	}

	snaps, err := b.snapshots.ListSnapshots(ctx, models.SnapshotFilter{StockCode: stockCode, TradeType: tt})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	byType := make(map[string][]BinStats)
	for _, s := range snaps {
		bins, ok := tomorrow[s.SignalType]
		if !ok || s.Learning.TotalSamples < b.settings.BinMinSamples {
			continue
		}
		if res.StockName == "" {
			res.StockName = s.StockName
		}
		byType[s.SignalType] = append(byType[s.SignalType], BinStats{
			SignalBin:     s.SignalBin,
			WinRate:       s.Learning.WinRate,
			AvgProfitRate: s.Learning.AvgProfitRate,
			SampleCount:   s.Learning.TotalSamples,
			SharpeRatio:   s.Learning.SharpeRatio,
			IsExcellent:   s.IsExcellent,
			IsTomorrow:    bins[s.SignalBin],
		})
	}

	types := make([]string, 0, len(tomorrow))
	for t := range tomorrow {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		bins := byType[t]
		sort.Slice(bins, func(i, j int) bool { return bins[i].SignalBin < bins[j].SignalBin })
		entry := SignalTypeBins{SignalType: t, TomorrowBins: sortedBins(tomorrow[t]), Bins: bins}
		if entry.Bins == nil {
			entry.Bins = []BinStats{}
		}
		for _, bin := range bins {
			if bin.IsExcellent {
				entry.ExcellentBinsCount++
			}
		}
		res.SignalTypes = append(res.SignalTypes, entry)
	}
	return res, nil
}

func sortedBins(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for b := range set {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}
