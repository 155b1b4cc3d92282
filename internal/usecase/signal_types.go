package usecase

import (
	"context"
	"fmt"
	"sort"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
)

// BestBin is the highest expected-value excellent bin of a signal type.
type BestBin struct {
	SignalBin     int     `json:"signal_bin"`
	WinRate       float64 `json:"win_rate"`
	AvgProfitRate float64 `json:"expected_value"`
	TotalSamples  int     `json:"sample_count"`
}

type SignalTypeSummary struct {
	SignalType             string  `json:"signal_type"`
	SignalCategory         string  `json:"signal_category"`
	Description            string  `json:"description"`
	ExcellentBins          []int   `json:"excellent_bins"`
	TotalExcellentPatterns int     `json:"total_excellent_patterns"`
	MaxWinRate             float64 `json:"max_win_rate"`
	AvgWinRate             float64 `json:"avg_win_rate"`
	MaxExpectedValue       float64 `json:"max_expected_value"`
	AvgExpectedValue       float64 `json:"avg_expected_value"`
	TotalSamples           int     `json:"total_samples"`
	BestBin                BestBin `json:"best_bin"`
}

// SignalTypes groups the excellent bins of a stock and direction by signal type.
type SignalTypes struct {
	snapshots domrepo.SnapshotStore
	catalog   domrepo.SignalTypeCatalog
	settings  Settings
}

func NewSignalTypes(snapshots domrepo.SnapshotStore, catalog domrepo.SignalTypeCatalog, s Settings) *SignalTypes {
	return &SignalTypes{snapshots: snapshots, catalog: catalog, settings: s}
}

func (st *SignalTypes) Summarize(ctx context.Context, stockCode string, tt models.TradeType) ([]SignalTypeSummary, error) {
	snaps, err := st.snapshots.ListSnapshots(ctx, models.SnapshotFilter{StockCode: stockCode, TradeType: tt})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	master, err := st.catalog.ListSignalTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list signal types: %w", err)
	}
	info := make(map[string]models.SignalTypeInfo, len(master))
	for _, m := range master {
		info[m.SignalType] = m
	}

	groups := make(map[string][]models.AxisSnapshot)
	var order []string
	for _, s := range snaps {
		if !replay.IsExcellent(s.Learning, st.settings.AxisMinSamples) {
			continue
		}
		if _, ok := groups[s.SignalType]; !ok {
			order = append(order, s.SignalType)
		}
		groups[s.SignalType] = append(groups[s.SignalType], s)
	}

	out := make([]SignalTypeSummary, 0, len(order))
	for _, name := range order {
		out = append(out, summarizeType(name, groups[name], info[name]))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].MaxExpectedValue != out[j].MaxExpectedValue {
			return out[i].MaxExpectedValue > out[j].MaxExpectedValue
		}
		return out[i].MaxWinRate > out[j].MaxWinRate
	})
	return out, nil
}

func summarizeType(name string, bins []models.AxisSnapshot, info models.SignalTypeInfo) SignalTypeSummary {
	sort.Slice(bins, func(i, j int) bool { return bins[i].SignalBin < bins[j].SignalBin })

	s := SignalTypeSummary{
		SignalType:             name,
		SignalCategory:         info.Category,
		Description:            info.Description,
		TotalExcellentPatterns: len(bins),
	}
	if s.SignalCategory == "" {
		s.SignalCategory = "Unknown"
	}
	if s.Description == "" {
		s.Description = name
	}

	var sumWin, sumAvg float64
	best := bins[0]
	for i, b := range bins {
		l := b.Learning
		s.ExcellentBins = append(s.ExcellentBins, b.SignalBin)
		s.TotalSamples += l.TotalSamples
		sumWin += l.WinRate
		sumAvg += l.AvgProfitRate
		if i == 0 || l.WinRate > s.MaxWinRate {
			s.MaxWinRate = l.WinRate
		}
		if i == 0 || l.AvgProfitRate > s.MaxExpectedValue {
			s.MaxExpectedValue = l.AvgProfitRate
		}
		if l.AvgProfitRate > best.Learning.AvgProfitRate ||
			(l.AvgProfitRate == best.Learning.AvgProfitRate && l.WinRate > best.Learning.WinRate) {
			best = b
		}
	}
	n := float64(len(bins))
	s.AvgWinRate = replay.RoundTo(sumWin/n, 1)
	s.AvgExpectedValue = replay.RoundTo(sumAvg/n, 2)
	s.MaxWinRate = replay.RoundTo(s.MaxWinRate, 1)
	s.MaxExpectedValue = replay.RoundTo(s.MaxExpectedValue, 2)
	s.BestBin = BestBin{
		SignalBin:     best.SignalBin,
		WinRate:       best.Learning.WinRate,
		AvgProfitRate: best.Learning.AvgProfitRate,
		TotalSamples:  best.Learning.TotalSamples,
	}
	return s
}
