package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryConfig(t *testing.T) {
	cfg := DefaultRetryConfig()
	assert.Equal(t, uint(3), cfg.Attempts)
	assert.Less(t, cfg.Delay, cfg.MaxDelay)
}

func TestDo_RetriesUntilSuccess(t *testing.T) {
	cfg := &RetryConfig{Attempts: 3, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	err := cfg.Do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestDo_UnrecoverableStops(t *testing.T) {
	cfg := &RetryConfig{Attempts: 5, Delay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	fatal := errors.New("bad request")

	calls := 0
	err := cfg.Do(context.Background(), func(context.Context) error {
		calls++
		return retry.Unrecoverable(fatal)
	})

	assert.ErrorIs(t, err, fatal)
	assert.Equal(t, 1, calls)
}

func TestDo_BudgetExceeded(t *testing.T) {
	cfg := &RetryConfig{Attempts: 100, Delay: 10 * time.Millisecond, MaxDelay: 10 * time.Millisecond, Timeout: 30 * time.Millisecond}

	start := time.Now()
	err := cfg.Do(context.Background(), func(context.Context) error {
		return errors.New("still down")
	})

	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestDo_ZeroAttemptsTriesOnce(t *testing.T) {
	cfg := &RetryConfig{}

	calls := 0
	err := cfg.Do(context.Background(), func(context.Context) error {
		calls++
		return errors.New("down")
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}
