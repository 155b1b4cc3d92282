package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/pkg/postgres"
)

// PGDecisionStore is a PostgreSQL implementation of domrepo.DecisionStore.
type PGDecisionStore struct {
	pool *postgres.Pool
}

func NewPGDecisionStore(pool *postgres.Pool) *PGDecisionStore {
	return &PGDecisionStore{pool: pool}
}

func (s *PGDecisionStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS axis_decisions (
			decision_key      TEXT PRIMARY KEY,
			signal_type       TEXT NOT NULL,
			signal_bin        INTEGER NOT NULL,
			trade_type        TEXT NOT NULL,
			stock_code        TEXT NOT NULL,
			decision_status   TEXT NOT NULL,
			profit_target_yen DOUBLE PRECISION NOT NULL DEFAULT 0,
			loss_cut_yen      DOUBLE PRECISION NOT NULL DEFAULT 0,
			gap_condition     TEXT NOT NULL DEFAULT 'ALL',
			additional_notes  TEXT NOT NULL DEFAULT '',
			learning_summary  JSONB NOT NULL,
			decided_at        TIMESTAMPTZ NOT NULL,
			updated_at        TIMESTAMPTZ NOT NULL
		);
		CREATE INDEX IF NOT EXISTS axis_decisions_status_idx
			ON axis_decisions (decision_status, decided_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("init decisions schema: %w", err)
	}
	return nil
}

const decisionColumns = `decision_key, signal_type, signal_bin, trade_type, stock_code, decision_status,
	profit_target_yen, loss_cut_yen, gap_condition, additional_notes, learning_summary, decided_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDecision(row rowScanner) (*models.Decision, error) {
	var d models.Decision
	var tradeType, status, gap string
	var summary []byte
	if err := row.Scan(
		&d.Key, &d.Axis.SignalType, &d.Axis.SignalBin, &tradeType, &d.Axis.StockCode, &status,
		&d.Exit.ProfitTargetYen, &d.Exit.LossCutYen, &gap, &d.Notes, &summary, &d.DecidedAt, &d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Axis.TradeType = models.TradeType(tradeType)
	d.Exit.TradeType = d.Axis.TradeType
	d.Exit.GapCondition = models.GapCondition(gap)
	d.Status = models.DecisionStatus(status)
	if err := json.Unmarshal(summary, &d.LearningSummary); err != nil {
		return nil, fmt.Errorf("decode learning summary: %w", err)
	}
	return &d, nil
}

func (s *PGDecisionStore) Get(ctx context.Context, key string) (*models.Decision, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+decisionColumns+` FROM axis_decisions WHERE decision_key = $1`, key)
	d, err := scanDecision(row)
	if err != nil {
		if postgres.IsNoRows(err) {
			return nil, domrepo.ErrNotFound
		}
		return nil, fmt.Errorf("get decision: %w", err)
	}
	return d, nil
}

// Save upserts by decision key; the original decided_at is kept on update.
func (s *PGDecisionStore) Save(ctx context.Context, d *models.Decision) error {
	summary, err := json.Marshal(d.LearningSummary)
	if err != nil {
		return fmt.Errorf("encode learning summary: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO axis_decisions (`+decisionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (decision_key) DO UPDATE
		SET decision_status   = EXCLUDED.decision_status,
		    profit_target_yen = EXCLUDED.profit_target_yen,
		    loss_cut_yen      = EXCLUDED.loss_cut_yen,
		    gap_condition     = EXCLUDED.gap_condition,
		    additional_notes  = EXCLUDED.additional_notes,
		    learning_summary  = EXCLUDED.learning_summary,
		    updated_at        = EXCLUDED.updated_at
	`,
		d.Key, d.Axis.SignalType, d.Axis.SignalBin, string(d.Axis.TradeType), d.Axis.StockCode, string(d.Status),
		d.Exit.ProfitTargetYen, d.Exit.LossCutYen, string(d.Exit.GapCondition), d.Notes, summary, d.DecidedAt, d.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save decision: %w", err)
	}
	return nil
}

func (s *PGDecisionStore) ListByStatus(ctx context.Context, status models.DecisionStatus, limit int) ([]*models.Decision, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+decisionColumns+`
		FROM axis_decisions
		WHERE decision_status = $1
		ORDER BY decided_at DESC
		LIMIT $2
	`, string(status), limit)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var out []*models.Decision
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PGDecisionStore) Statuses(ctx context.Context, keys []string) (map[string]models.DecisionStatus, error) {
	out := make(map[string]models.DecisionStatus, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `
		SELECT decision_key, decision_status
		FROM axis_decisions
		WHERE decision_key = ANY($1)
	`, keys)
	if err != nil {
		return nil, fmt.Errorf("query decision statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, status string
		if err := rows.Scan(&key, &status); err != nil {
			return nil, fmt.Errorf("scan decision status: %w", err)
		}
		out[key] = models.DecisionStatus(status)
	}
	return out, rows.Err()
}

func (s *PGDecisionStore) Close() error {
	s.pool.Close()
	return nil
}

var _ domrepo.DecisionStore = (*PGDecisionStore)(nil)
