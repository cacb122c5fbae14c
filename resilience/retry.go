package resilience

import (
	"context"
	"math/rand"
	"time"
)

// BackoffConfig controls Retry's exponential-backoff-with-jitter schedule.
// It is shared between the per-tool breaker policies and the generation
// engine's own retry loop.
type BackoffConfig struct {
	MaxAttempts int // total attempts, including the first
	Base        time.Duration
	Max         time.Duration
	Jitter      time.Duration
}

// Delay returns the sleep duration before the given 1-indexed attempt:
// min(backoff_max, backoff_base * 2^(attempt-1)) + jitter.
func (c BackoffConfig) Delay(attempt int) time.Duration {
	d := c.Base << uint(attempt-1) // base * 2^(attempt-1)
	if c.Max > 0 && d > c.Max {
		d = c.Max
	}
	if c.Jitter > 0 {
		d += time.Duration(rand.Int63n(int64(c.Jitter) + 1))
	}
	return d
}

// Retry runs fn, retrying on error up to MaxAttempts times with the
// backoff schedule above. It stops early if ctx is canceled. The last
// error is returned on exhaustion.
func Retry(ctx context.Context, cfg BackoffConfig, fn func(attempt int) error) error {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(attempt); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt == cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(cfg.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}
