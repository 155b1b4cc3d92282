package replay

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidOccurrence = errors.New("invalid occurrence")
	ErrInvalidExitConfig = errors.New("invalid exit config")
)

// OccurrenceError reports a malformed occurrence. It unwraps to ErrInvalidOccurrence.
type OccurrenceError struct {
	Date   time.Time
	Field  string
	Reason string
}

func (e *OccurrenceError) Error() string {
	if e.Date.IsZero() {
		return fmt.Sprintf("invalid occurrence: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid occurrence %s: %s %s", e.Date.Format("2006-01-02"), e.Field, e.Reason)
}

func (e *OccurrenceError) Unwrap() error { return ErrInvalidOccurrence }

// ConfigError reports a malformed exit configuration. It unwraps to ErrInvalidExitConfig.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid exit config: %s %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidExitConfig }
