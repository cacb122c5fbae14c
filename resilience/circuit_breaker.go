// Package resilience implements the circuit-breaker and retry fabric
// shared by the tool layer and the generation engine: a small per-breaker
// state machine with a single lock, exposing state changes via logging
// and listener hooks and the current consecutive-failure count via
// Snapshot. Successes are not counted anywhere.
package resilience

import (
	"sync"
	"time"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
)

// State is one of the three circuit-breaker states.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Listener is notified of every state transition, for logging/metrics.
type Listener func(name string, from, to State)

// CircuitBreaker is a closed/open/half-open state machine:
// closed->open on fail_counter>=fail_max; open->half_open after
// reset_timeout; half_open->closed on next success; half_open->open on
// next failure.
type CircuitBreaker struct {
	mu sync.Mutex

	name         string
	failMax      int
	resetTimeout time.Duration

	state          State
	failCounter    int
	lastTransition time.Time

	logger    core.Logger
	listeners []Listener
}

// NewCircuitBreaker constructs a breaker in the closed state.
func NewCircuitBreaker(name string, failMax int, resetTimeout time.Duration, logger core.Logger) *CircuitBreaker {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	if failMax <= 0 {
		failMax = 3
	}
	return &CircuitBreaker{
		name:           name,
		failMax:        failMax,
		resetTimeout:   resetTimeout,
		state:          StateClosed,
		lastTransition: time.Now(),
		logger:         logger,
	}
}

// OnStateChange registers a listener invoked (outside the lock) whenever
// the breaker transitions.
func (cb *CircuitBreaker) OnStateChange(l Listener) {
	cb.mu.Lock()
	cb.listeners = append(cb.listeners, l)
	cb.mu.Unlock()
}

// CurrentState reports the breaker's state, promoting open->half_open if
// reset_timeout has elapsed since the last transition. Allow and Snapshot
// apply the same promotion inside the lock, so all three report a
// consistent view.
func (cb *CircuitBreaker) CurrentState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.promoteIfDue()
	return cb.state
}

// promoteIfDue must be called with cb.mu held.
func (cb *CircuitBreaker) promoteIfDue() {
	if cb.state == StateOpen && time.Since(cb.lastTransition) >= cb.resetTimeout {
		cb.transition(StateHalfOpen)
	}
}

// transition must be called with cb.mu held.
func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	cb.lastTransition = time.Now()
	if to == StateClosed {
		cb.failCounter = 0
	}
	cb.logger.Info("circuit breaker state change", map[string]interface{}{
		"breaker": cb.name,
		"from":    from.String(),
		"to":      to.String(),
	})
	listeners := append([]Listener(nil), cb.listeners...)
	go func() {
		for _, l := range listeners {
			l(cb.name, from, to)
		}
	}()
}

// Allow reports whether a call may proceed. Call start (not Success or
// Failure) is what drives open->half_open promotion.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.promoteIfDue()
	return cb.state != StateOpen
}

// Success records a successful call. In half_open it closes the breaker
// immediately; in closed it resets the failure counter.
func (cb *CircuitBreaker) Success() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case StateHalfOpen:
		cb.transition(StateClosed)
	case StateClosed:
		cb.failCounter = 0
	}
}

// Failure records a failed call. In half_open it reopens immediately; in
// closed it increments the counter and opens at fail_max.
func (cb *CircuitBreaker) Failure(_ error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	switch cb.state {
	case StateHalfOpen:
		cb.transition(StateOpen)
	case StateClosed:
		cb.failCounter++
		if cb.failCounter >= cb.failMax {
			cb.transition(StateOpen)
		}
	}
}

// Reset forces the breaker back to closed, for operator intervention or
// test teardown.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failCounter = 0
	cb.transition(StateClosed)
}

// Snapshot is a point-in-time status view for the metrics/status API.
type Snapshot struct {
	Name        string
	State       State
	FailCounter int
	FailMax     int
}

func (cb *CircuitBreaker) Snapshot() Snapshot {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.promoteIfDue()
	return Snapshot{Name: cb.name, State: cb.state, FailCounter: cb.failCounter, FailMax: cb.failMax}
}
