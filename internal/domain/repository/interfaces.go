package repository

import (
	"context"

	"SignalAxis/internal/domain/models"
)

// DecisionStore persists human decisions, keyed by AxisKey.String().
type DecisionStore interface {
	Init(ctx context.Context) error
	Get(ctx context.Context, key string) (*models.Decision, error) // ErrNotFound when absent
	Save(ctx context.Context, d *models.Decision) error
	ListByStatus(ctx context.Context, status models.DecisionStatus, limit int) ([]*models.Decision, error)
	// Statuses returns the stored status per key; keys without a decision are omitted.
	Statuses(ctx context.Context, keys []string) (map[string]models.DecisionStatus, error)
	Close() error
}

// DecisionPublisher announces recorded decisions.
type DecisionPublisher interface {
	PublishDecision(ctx context.Context, ev models.DecisionEvent) error
	Close() error
}

type Metrics interface {
	RecordEvaluation(kind string, admitted, excluded, lossCuts, targets int)
	RecordQuery(op string, seconds float64, err error)
	RecordDecision(status string)
	RecordCacheLookup(cache string, hit bool)
	RecordError(kind string)
}
