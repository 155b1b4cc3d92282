// Package resilience wraps calls to external stores with retry and a circuit breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("dependency unavailable")

// Config holds retry and breaker settings.
type Config struct {
	Name            string
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxElapsed      time.Duration
	MaxRetries      uint64
	BreakerFailures uint32
	BreakerTimeout  time.Duration
	// Permanent marks errors that are neither retried nor counted against the breaker.
	Permanent func(error) bool
}

// Guard retries transient failures and stops calling a dependency that keeps failing.
type Guard struct {
	cfg     Config
	breaker *gobreaker.CircuitBreaker
}

// New creates a guard. Zero values get conservative defaults.
func New(cfg Config) *Guard {
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = 200 * time.Millisecond
	}
	if cfg.MaxInterval <= 0 {
		cfg.MaxInterval = 2 * time.Second
	}
	if cfg.MaxElapsed <= 0 {
		cfg.MaxElapsed = 10 * time.Second
	}
	if cfg.BreakerFailures == 0 {
		cfg.BreakerFailures = 5
	}
	if cfg.BreakerTimeout <= 0 {
		cfg.BreakerTimeout = 30 * time.Second
	}

	g := &Guard{cfg: cfg}
	g.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     cfg.Name,
		Interval: time.Minute,
		Timeout:  cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || g.permanent(err)
		},
	})
	return g
}

// Do runs fn until it succeeds, fails permanently, or the retry budget runs out.
func (g *Guard) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	attempt := func() error {
		_, err := g.breaker.Execute(func() (interface{}, error) {
			return nil, fn(ctx)
		})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
			return backoff.Permanent(fmt.Errorf("%s: %w", op, ErrUnavailable))
		case g.permanent(err):
			return backoff.Permanent(err)
		}
		return err
	}

	return backoff.Retry(attempt, backoff.WithContext(g.policy(), ctx))
}

// State reports the breaker state, e.g. "closed" or "open".
func (g *Guard) State() string {
	return g.breaker.State().String()
}

func (g *Guard) policy() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = g.cfg.InitialInterval
	b.MaxInterval = g.cfg.MaxInterval
	b.MaxElapsedTime = g.cfg.MaxElapsed
	if g.cfg.MaxRetries > 0 {
		return backoff.WithMaxRetries(b, g.cfg.MaxRetries)
	}
	return b
}

func (g *Guard) permanent(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return g.cfg.Permanent != nil && g.cfg.Permanent(err)
}
