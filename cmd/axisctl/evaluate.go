package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"SignalAxis/internal/domain/models"
	"SignalAxis/internal/repository/memory"
	"SignalAxis/internal/services/replay"
)

type evaluateOptions struct {
	file         string
	tradeType    string
	signalType   string
	signalBin    int
	stockCode    string
	profitTarget float64
	lossCut      float64
	gap          string
	details      bool
}

func newEvaluateCmd() *cobra.Command {
	var o evaluateOptions
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Replay a fixture of occurrences under an exit config",
		Example: `  # Baseline and filtered stats for every BUY occurrence in the file
  axisctl evaluate --file occurrences.json --trade-type BUY

  # One axis with a 30 yen target and 20 yen loss cut, gap-up days only
  axisctl evaluate --file fixture.json --trade-type BUY --signal-type rsi --bin 3 \
    --stock 7203 --profit-target 30 --loss-cut 20 --gap ABOVE`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runEvaluate(cmd, o)
		},
	}
	f := cmd.Flags()
	f.StringVar(&o.file, "file", "", "JSON fixture or array of occurrences")
	f.StringVar(&o.tradeType, "trade-type", "BUY", "BUY or SELL")
	f.StringVar(&o.signalType, "signal-type", "", "keep only this signal type")
	f.IntVar(&o.signalBin, "bin", 0, "keep only this signal bin (0 keeps all)")
	f.StringVar(&o.stockCode, "stock", "", "keep only this stock code")
	f.Float64Var(&o.profitTarget, "profit-target", 0, "profit target in yen (0 disables)")
	f.Float64Var(&o.lossCut, "loss-cut", 0, "loss cut in yen (0 disables)")
	f.StringVar(&o.gap, "gap", "ALL", "previous-close gap condition: ALL, ABOVE or BELOW")
	f.BoolVar(&o.details, "details", false, "include per-occurrence rows")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runEvaluate(cmd *cobra.Command, o evaluateOptions) error {
	tt, err := models.ParseTradeType(o.tradeType)
	if err != nil {
		return err
	}
	gap, err := models.ParseGapCondition(o.gap)
	if err != nil {
		return err
	}

	rows, err := memory.LoadOccurrenceRows(o.file)
	if err != nil {
		return err
	}
	rows = filterRows(rows, tt, o)
	if len(rows) == 0 {
		return fmt.Errorf("no occurrences in %s match the filters", o.file)
	}

	occs, err := replay.FromRows(rows)
	if err != nil {
		return err
	}
	ev, err := replay.Evaluate(occs, models.ExitConfig{
		TradeType:       tt,
		ProfitTargetYen: o.profitTarget,
		LossCutYen:      o.lossCut,
		GapCondition:    gap,
	})
	if err != nil {
		return err
	}
	if !o.details {
		ev.Details = nil
	}
	return printJSON(cmd.OutOrStdout(), ev)
}

// filterRows keeps rows of the trade type and optional axis filters. Rows without
// a trade type belong to every side.
func filterRows(rows []models.OccurrenceRow, tt models.TradeType, o evaluateOptions) []models.OccurrenceRow {
	out := rows[:0:0]
	for _, r := range rows {
		switch {
		case r.TradeType != "" && models.TradeType(r.TradeType) != tt:
		case o.signalType != "" && r.SignalType != o.signalType:
		case o.signalBin != 0 && r.SignalBin != o.signalBin:
		case o.stockCode != "" && r.StockCode != o.stockCode:
		default:
			out = append(out, r)
		}
	}
	return out
}
