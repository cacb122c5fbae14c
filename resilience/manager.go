package resilience

import (
	"sync"
	"time"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
)

// Manager keeps a process-wide, named-breaker registry: GetOrCreate
// returns one shared breaker per name and Snapshot reports them all. The
// generation engine's retries do not go through a breaker.
type Manager struct {
	mu       sync.RWMutex
	breakers map[string]*CircuitBreaker
	logger   core.Logger
}

// NewManager creates an empty breaker manager.
func NewManager(logger core.Logger) *Manager {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Manager{breakers: make(map[string]*CircuitBreaker), logger: logger}
}

// GetOrCreate returns the named breaker, creating it with the given policy
// on first use. Subsequent calls ignore failMax/resetTimeout and return
// the existing instance, so config changes mid-process require a new name.
func (m *Manager) GetOrCreate(name string, failMax int, resetTimeout time.Duration) *CircuitBreaker {
	m.mu.RLock()
	cb, ok := m.breakers[name]
	m.mu.RUnlock()
	if ok {
		return cb
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if cb, ok = m.breakers[name]; ok {
		return cb
	}
	cb = NewCircuitBreaker(name, failMax, resetTimeout, m.logger)
	m.breakers[name] = cb
	return cb
}

// Snapshot returns a status snapshot of every registered breaker, suitable
// for exporting as gauges.
func (m *Manager) Snapshot() []Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Snapshot, 0, len(m.breakers))
	for _, cb := range m.breakers {
		out = append(out, cb.Snapshot())
	}
	return out
}

// Reset resets every breaker to closed, for test teardown.
func (m *Manager) Reset() {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, cb := range m.breakers {
		cb.Reset()
	}
}
