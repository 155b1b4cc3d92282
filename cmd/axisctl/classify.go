package main

import (
	"github.com/spf13/cobra"

	"SignalAxis/internal/domain/models"
	"SignalAxis/internal/services/replay"
)

type classification struct {
	WinRate         float64                `json:"win_rate"`
	AvgProfitRate   float64                `json:"avg_profit_rate"`
	TotalSamples    int                    `json:"total_samples"`
	PatternCategory models.PatternCategory `json:"pattern_category"`
	IsExcellent     bool                   `json:"is_excellent"`
}

func newClassifyCmd() *cobra.Command {
	var (
		winRate, avg float64
		samples      int
		minSamples   int
	)
	cmd := &cobra.Command{
		Use:     "classify",
		Short:   "Map a win rate and average return to a pattern category",
		Example: `  axisctl classify --win-rate 62.5 --avg 0.7 --samples 24`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s := models.StatsSummary{TotalSamples: samples, WinRate: winRate, AvgProfitRate: avg}
			return printJSON(cmd.OutOrStdout(), classification{
				WinRate:         winRate,
				AvgProfitRate:   avg,
				TotalSamples:    samples,
				PatternCategory: replay.Classify(winRate, avg),
				IsExcellent:     replay.IsExcellent(s, minSamples),
			})
		},
	}
	f := cmd.Flags()
	f.Float64Var(&winRate, "win-rate", 0, "win rate in percent")
	f.Float64Var(&avg, "avg", 0, "average profit rate in percent")
	f.IntVar(&samples, "samples", 0, "sample count")
	f.IntVar(&minSamples, "min-samples", 20, "sample floor for is_excellent")
	_ = cmd.MarkFlagRequired("win-rate")
	_ = cmd.MarkFlagRequired("avg")
	return cmd
}
