package memory

import (
	"context"
	"sort"
	"sync"

	"SignalAxis/internal/domain/models"
	domrepo "SignalAxis/internal/domain/repository"
)

// DecisionStore keeps decisions in a map.
type DecisionStore struct {
	mu   sync.RWMutex
	data map[string]models.Decision
}

func NewDecisionStore() *DecisionStore {
	return &DecisionStore{data: make(map[string]models.Decision)}
}

func (s *DecisionStore) Init(context.Context) error { return nil }

func (s *DecisionStore) Get(_ context.Context, key string) (*models.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.data[key]
	if !ok {
		return nil, domrepo.ErrNotFound
	}
	return &d, nil
}

func (s *DecisionStore) Save(_ context.Context, d *models.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.data[d.Key]; ok && !prev.DecidedAt.IsZero() {
		saved := *d
		saved.DecidedAt = prev.DecidedAt
		s.data[d.Key] = saved
		return nil
	}
	s.data[d.Key] = *d
	return nil
}

func (s *DecisionStore) ListByStatus(_ context.Context, status models.DecisionStatus, limit int) ([]*models.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Decision
	for _, d := range s.data {
		if d.Status == status {
			d := d
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DecidedAt.Equal(out[j].DecidedAt) {
			return out[i].DecidedAt.After(out[j].DecidedAt)
		}
		return out[i].Key < out[j].Key
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *DecisionStore) Statuses(_ context.Context, keys []string) (map[string]models.DecisionStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.DecisionStatus, len(keys))
	for _, k := range keys {
		if d, ok := s.data[k]; ok {
			out[k] = d.Status
		}
	}
	return out, nil
}

func (s *DecisionStore) Close() error { return nil }

var _ domrepo.DecisionStore = (*DecisionStore)(nil)
