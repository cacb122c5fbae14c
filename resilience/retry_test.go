package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetry_SucceedsWithoutRetrying(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), BackoffConfig{MaxAttempts: 3, Base: time.Millisecond}, func(attempt int) error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_ExhaustsAndReturnsLastError(t *testing.T) {
	calls := 0
	wantErr := errors.New("boom")
	err := Retry(context.Background(), BackoffConfig{MaxAttempts: 3, Base: time.Millisecond, Max: 5 * time.Millisecond}, func(attempt int) error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, BackoffConfig{MaxAttempts: 5, Base: time.Millisecond}, func(attempt int) error {
		return errors.New("should not matter")
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackoffConfig_DelayCapsAtMax(t *testing.T) {
	cfg := BackoffConfig{Base: time.Second, Max: 3 * time.Second}
	d := cfg.Delay(10) // would be enormous uncapped
	assert.LessOrEqual(t, d, 3*time.Second+0) // jitter is zero here
}
