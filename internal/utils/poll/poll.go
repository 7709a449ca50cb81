package poll

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

// ErrExhausted is returned when a bounded poll runs out of attempts
// before the target condition is observed.
var ErrExhausted = errors.New("poll attempt budget exhausted")

type Config struct {
	// MaxAttempts bounds the loop. Zero means poll forever.
	MaxAttempts int
	Interval    time.Duration
}

// Fn is one poll attempt. done reports that the target condition holds.
// A plain error is inconclusive and consumes the attempt budget; wrap it
// with Fatal to abort the loop immediately.
type Fn func(attempt int) (done bool, err error)

type fatalError struct {
	err error
}

func (e *fatalError) Error() string {
	return e.err.Error()
}

func (e *fatalError) Unwrap() error {
	return e.err
}

// Fatal marks an error as non-retryable, e.g. a malformed price in an
// otherwise well-formed response.
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &fatalError{err: err}
}

// Until runs fn at the configured interval until it reports done, fails
// fatally, or exhausts its attempts. The attempt counter passed to fn
// starts at 1.
func Until(cfg Config, fn Fn) error {
	var lastErr error

	for attempt := 1; cfg.MaxAttempts == 0 || attempt <= cfg.MaxAttempts; attempt++ {
		done, err := fn(attempt)
		if err != nil {
			var fatal *fatalError
			if errors.As(err, &fatal) {
				return fatal.err
			}
			lastErr = err
		}
		if done {
			return nil
		}

		time.Sleep(cfg.Interval)
	}

	if lastErr != nil {
		return fmt.Errorf("%w after %d attempts: last error: %v", ErrExhausted, cfg.MaxAttempts, lastErr)
	}
	return fmt.Errorf("%w after %d attempts", ErrExhausted, cfg.MaxAttempts)
}
