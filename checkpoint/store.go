// Package checkpoint is the durable state / checkpoint store keyed by
// session: put/get/delete a whole-state snapshot so any orchestrator stage
// can resume after a crash. The store is deliberately opaque to the
// orchestrator's own state type (round-tripped as JSON) so this package
// never imports the orchestrator package back.
package checkpoint

import "context"

// Store is the checkpoint wire contract: put(thread_id, state_blob),
// get(thread_id) -> state_blob?, delete(thread_id). Implementations own
// their own concurrency; writes are whole-state snapshots keyed by
// thread_id.
type Store interface {
	// Put atomically persists state under threadID, replacing any prior
	// snapshot.
	Put(ctx context.Context, threadID string, state any) error
	// Get decodes the latest snapshot for threadID into out (a pointer).
	// It reports false if no snapshot exists for threadID.
	Get(ctx context.Context, threadID string, out any) (bool, error)
	// Delete removes every row for threadID across the underlying tables.
	Delete(ctx context.Context, threadID string) error
}
