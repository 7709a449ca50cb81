package poll

import (
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestUntil_DoneOnAttemptK(t *testing.T) {
	tests := []struct {
		name        string
		doneAttempt int
		maxAttempts int
	}{
		{name: "done on first attempt", doneAttempt: 1, maxAttempts: 5},
		{name: "done on second attempt", doneAttempt: 2, maxAttempts: 30},
		{name: "done on final attempt", doneAttempt: 5, maxAttempts: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			err := Until(Config{MaxAttempts: tt.maxAttempts, Interval: time.Millisecond}, func(attempt int) (bool, error) {
				attempts++
				assert.Equal(t, attempts, attempt)
				return attempt == tt.doneAttempt, nil
			})

			assert.NoError(t, err)
			assert.Equal(t, tt.doneAttempt, attempts)
		})
	}
}

func TestUntil_Exhaustion(t *testing.T) {
	attempts := 0
	err := Until(Config{MaxAttempts: 5, Interval: time.Millisecond}, func(attempt int) (bool, error) {
		attempts++
		return false, nil
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 5, attempts)
}

func TestUntil_RetryableErrorsConsumeBudget(t *testing.T) {
	attempts := 0
	err := Until(Config{MaxAttempts: 3, Interval: time.Millisecond}, func(attempt int) (bool, error) {
		attempts++
		return false, errors.New("connection reset")
	})

	assert.ErrorIs(t, err, ErrExhausted)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Equal(t, 3, attempts)
}

func TestUntil_FatalAbortsImmediately(t *testing.T) {
	boom := errors.New("invalid ask price")
	attempts := 0
	err := Until(Config{MaxAttempts: 10, Interval: time.Millisecond}, func(attempt int) (bool, error) {
		attempts++
		return false, Fatal(boom)
	})

	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, ErrExhausted)
	assert.Equal(t, 1, attempts)
}

func TestUntil_UnboundedStopsOnDone(t *testing.T) {
	attempts := 0
	err := Until(Config{MaxAttempts: 0, Interval: time.Millisecond}, func(attempt int) (bool, error) {
		attempts++
		// errors along the way never escalate in unbounded mode
		if attempt < 4 {
			return false, errors.New("not yet")
		}
		return true, nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 4, attempts)
}
