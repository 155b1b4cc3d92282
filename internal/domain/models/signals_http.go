package models

import "strings"

// Requests for the dashboard HTTP endpoints. Bound by echo from path, query and body.

type AxisQuery struct {
	SignalType string `param:"signal_type" query:"signal_type" json:"signal_type" validate:"required,max=64"`
	SignalBin  int    `param:"signal_bin" query:"signal_bin" json:"signal_bin" validate:"gte=1,lte=20"`
	TradeType  string `param:"trade_type" query:"trade_type" json:"trade_type" validate:"required"`
	StockCode  string `param:"stock_code" query:"stock_code" json:"stock_code" validate:"required,max=16"`
}

// Axis normalizes the request into an AxisKey.
func (q AxisQuery) Axis() (AxisKey, error) {
	tt, err := ParseTradeType(q.TradeType)
	if err != nil {
		return AxisKey{}, err
	}
	return AxisKey{
		SignalType: strings.TrimSpace(q.SignalType),
		SignalBin:  q.SignalBin,
		TradeType:  tt,
		StockCode:  strings.TrimSpace(q.StockCode),
	}, nil
}

type TuningRequest struct {
	AxisQuery
	ProfitTargetYen float64 `query:"profit_target_yen" json:"profit_target_yen" validate:"gte=0"`
	LossCutYen      float64 `query:"loss_cut_yen" json:"loss_cut_yen" validate:"gte=0"`
	GapCondition    string  `query:"prev_close_gap_condition" json:"prev_close_gap_condition" default:"ALL" validate:"oneof=ALL ABOVE BELOW"`
}

// Normalize accepts the lowercase gap values older dashboard clients send.
func (r *TuningRequest) Normalize() {
	r.GapCondition = strings.ToUpper(strings.TrimSpace(r.GapCondition))
}

// ExitConfig builds the exit rule for the given direction.
func (r TuningRequest) ExitConfig(tt TradeType) ExitConfig {
	gap, err := ParseGapCondition(r.GapCondition)
	if err != nil {
		gap = GapCondition(r.GapCondition)
	}
	return ExitConfig{
		TradeType:       tt,
		ProfitTargetYen: r.ProfitTargetYen,
		LossCutYen:      r.LossCutYen,
		GapCondition:    gap,
	}
}

type TomorrowRequest struct {
	Page           int     `query:"page" json:"page" default:"1" validate:"gte=1"`
	PerPage        int     `query:"per_page" json:"per_page" default:"15" validate:"gte=1,lte=100"`
	DecisionFilter string  `query:"decision_filter" json:"decision_filter" default:"pending_only" validate:"oneof=pending_only all"`
	MinWinRate     float64 `query:"min_win_rate" json:"min_win_rate" validate:"gte=0,lte=100"`
	StockCode      string  `query:"stock_code" json:"stock_code" validate:"omitempty,max=16"`
	FourAFilter    string  `query:"four_a_filter" json:"four_a_filter" default:"only_4a" validate:"oneof=only_4a all exclude_4a"`
}

// StockDirectionRequest addresses every axis of one stock and direction.
type StockDirectionRequest struct {
	StockCode string `param:"stock_code" json:"stock_code" validate:"required,max=16"`
	TradeType string `param:"trade_type" json:"trade_type" validate:"required"`
}

type DecisionRequest struct {
	AxisQuery
	Action          string  `json:"action" validate:"required,oneof=accept reject defer"`
	ProfitTargetYen float64 `json:"profit_target_yen" validate:"gte=0"`
	LossCutYen      float64 `json:"loss_cut_yen" validate:"gte=0"`
	GapCondition    string  `json:"prev_close_gap_condition" default:"ALL" validate:"oneof=ALL ABOVE BELOW"`
	Notes           string  `json:"additional_notes" validate:"max=2000"`
}

func (r *DecisionRequest) Normalize() {
	r.GapCondition = strings.ToUpper(strings.TrimSpace(r.GapCondition))
}

type DecisionListRequest struct {
	Status string `query:"status" json:"status" default:"configured" validate:"oneof=configured pending rejected"`
	Limit  int    `query:"limit" json:"limit" default:"100" validate:"gte=1,lte=500"`
}
