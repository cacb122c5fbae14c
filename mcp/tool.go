package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/resilience"
)

// ExecutionRecord is the audit entry recorded for every tool invocation,
// regardless of outcome. Service stores it under the tool's name in
// Output.ToolPolicy, so a later call of the same tool in one pass
// replaces the earlier record.
type ExecutionRecord struct {
	Tool      string    `json:"tool"`
	StartedAt time.Time `json:"started_at"`
	Duration  float64   `json:"duration_seconds"`
	Attempts  int       `json:"attempts"`
	OK        bool      `json:"ok"`
	Skipped   bool      `json:"skipped,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// Policy is the retry/timeout envelope a single tool call executes under.
type Policy struct {
	Breaker    *resilience.CircuitBreaker
	MaxRetries int
	Timeout    time.Duration
	Backoff    resilience.BackoffConfig
	Logger     core.Logger
}

const circuitOpenErr = "circuit_open"

// Execute runs fn under breaker+retry+timeout control:
//
//   - If the breaker is open, fn is never called and the returned record
//     has Skipped=true, OK=false, LastError="circuit_open". A skipped call
//     is not counted as a breaker failure.
//   - Each attempt runs under a per-attempt context timeout. A timeout or
//     error reports a failure to the breaker; if attempts remain, the call
//     sleeps the backoff delay and retries.
//   - The first success reports success to the breaker and returns
//     (result, record{ok:true}).
//   - Exhausting retries returns (zero value, record{ok:false}) with the
//     last error.
func Execute[T any](ctx context.Context, tool string, policy Policy, fn func(ctx context.Context) (T, error)) (T, ExecutionRecord) {
	var zero T
	rec := ExecutionRecord{Tool: tool, StartedAt: time.Now()}

	if policy.Breaker != nil && !policy.Breaker.Allow() {
		rec.Skipped = true
		rec.LastError = circuitOpenErr
		rec.Duration = time.Since(rec.StartedAt).Seconds()
		return zero, rec
	}

	maxAttempts := policy.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	var result T
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		// A breaker that tripped open during the previous attempt's failure
		// interrupts the retry loop immediately.
		if attempt > 1 && policy.Breaker != nil && !policy.Breaker.Allow() {
			rec.Skipped = true
			rec.OK = false
			rec.LastError = circuitOpenErr
			rec.Duration = time.Since(rec.StartedAt).Seconds()
			return zero, rec
		}
		rec.Attempts = attempt

		attemptCtx := ctx
		var cancel context.CancelFunc
		if policy.Timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, policy.Timeout)
		}
		res, err := fn(attemptCtx)
		if cancel != nil {
			cancel()
		}

		if err == nil {
			result = res
			lastErr = nil
			break
		}
		lastErr = err
		if policy.Breaker != nil {
			policy.Breaker.Failure(err)
		}
		if policy.Logger != nil {
			policy.Logger.Warn("mcp tool attempt failed", map[string]interface{}{
				"tool": tool, "attempt": attempt, "error": err.Error(),
			})
		}

		if errors.Is(ctx.Err(), context.Canceled) {
			break
		}
		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(policy.Backoff.Delay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			lastErr = ctx.Err()
		case <-timer.C:
		}
	}

	rec.Duration = time.Since(rec.StartedAt).Seconds()
	if lastErr == nil {
		rec.OK = true
		if policy.Breaker != nil {
			policy.Breaker.Success()
		}
		return result, rec
	}
	rec.OK = false
	rec.LastError = lastErr.Error()
	return zero, rec
}
