package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNotFound = errors.New("not found")

func fastGuard(retries uint64, failures uint32) *Guard {
	return New(Config{
		Name:            "test",
		InitialInterval: time.Millisecond,
		MaxInterval:     2 * time.Millisecond,
		MaxElapsed:      time.Second,
		MaxRetries:      retries,
		BreakerFailures: failures,
		BreakerTimeout:  time.Minute,
		Permanent:       func(err error) bool { return errors.Is(err, errNotFound) },
	})
}

func TestGuard_RetriesTransientFailure(t *testing.T) {
	g := fastGuard(3, 10)
	calls := 0

	err := g.Do(context.Background(), "list", func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection reset")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestGuard_PermanentErrorNotRetried(t *testing.T) {
	g := fastGuard(3, 1)
	calls := 0

	err := g.Do(context.Background(), "get", func(context.Context) error {
		calls++
		return errNotFound
	})

	assert.ErrorIs(t, err, errNotFound)
	assert.Equal(t, 1, calls)
	assert.Equal(t, "closed", g.State())
}

func TestGuard_OpensAfterConsecutiveFailures(t *testing.T) {
	g := fastGuard(1, 2)
	boom := errors.New("boom")

	err := g.Do(context.Background(), "list", func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "open", g.State())

	calls := 0
	err = g.Do(context.Background(), "list", func(context.Context) error {
		calls++
		return nil
	})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Zero(t, calls)
}
