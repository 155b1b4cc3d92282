package usecase

import (
	"context"
	"errors"
	"fmt"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
	"SignalAxis/internal/services/replay"
	"SignalAxis/pkg/cache"
)

var (
	ErrAlreadyConfigured  = errors.New("decision already configured")
	ErrNoLearningStats    = errors.New("no learning-period occurrences for axis")
	ErrNoVerificationData = errors.New("no verification-period occurrences for axis")
	ErrNothingFires       = errors.New("no signals fire on the next trading date")
	ErrInvalidDecision    = errors.New("invalid decision")
)

const (
	tomorrowCachePrefix = "tomorrow"
	axisCachePrefix     = "axis"
)

// axisOccurrences loads and validates one axis within a period.
func axisOccurrences(ctx context.Context, store domrepo.OccurrenceStore, axis models.AxisKey, p models.Period) ([]models.SignalOccurrence, string, error) {
	rows, err := store.ListOccurrences(ctx, models.ForAxis(axis, p))
	if err != nil {
		return nil, "", fmt.Errorf("list occurrences %s: %w", axis, err)
	}
	occs, err := replay.FromRows(rows)
	if err != nil {
		return nil, "", err
	}
	name := ""
	if len(rows) > 0 {
		name = rows[0].StockName
	}
	return occs, name, nil
}

func recordEvaluation(m domrepo.Metrics, kind string, outcomes []models.RecomputedOutcome) {
	var admitted, excluded, lossCuts, targets int
	for _, o := range outcomes {
		if !o.Included {
			excluded++
			continue
		}
		admitted++
		switch o.Exit {
		case models.ExitLossCut:
			lossCuts++
		case models.ExitProfitTarget:
			targets++
		}
	}
	m.RecordEvaluation(kind, admitted, excluded, lossCuts, targets)
}

// invalidateAxis drops cached responses that depend on an axis decision.
func invalidateAxis(ctx context.Context, c cache.Service, key string) error {
	if c == nil {
		return nil
	}
	return errors.Join(
		c.Delete(ctx, cache.GenerateKeyWithParams(axisCachePrefix, key)),
		c.DeleteByPattern(ctx, cache.BuildPattern(tomorrowCachePrefix)),
	)
}

func newestFirst(rows []replay.DetailRow) []replay.DetailRow {
	out := make([]replay.DetailRow, len(rows))
	for i, r := range rows {
		out[len(rows)-1-i] = r
	}
	return out
}
