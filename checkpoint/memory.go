package checkpoint

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
)

// MemoryStore is the in-process CheckpointStore used by tests and by any
// deployment that accepts losing sessions on process restart. It still
// round-trips through JSON rather than keeping a live pointer, so a test
// against MemoryStore exercises the same encode/decode path production
// code does against Redis.
type MemoryStore struct {
	mu   sync.RWMutex
	rows map[string][]byte
}

// NewMemoryStore builds an empty in-process checkpoint store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[string][]byte)}
}

func (m *MemoryStore) Put(ctx context.Context, threadID string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return core.NewFrameworkError("checkpoint.MemoryStore.Put", "checkpoint", err)
	}
	m.mu.Lock()
	m.rows[threadID] = data
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, threadID string, out any) (bool, error) {
	m.mu.RLock()
	data, ok := m.rows[threadID]
	m.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, core.NewFrameworkError("checkpoint.MemoryStore.Get", "checkpoint", err)
	}
	return true, nil
}

func (m *MemoryStore) Delete(ctx context.Context, threadID string) error {
	m.mu.Lock()
	delete(m.rows, threadID)
	m.mu.Unlock()
	return nil
}
