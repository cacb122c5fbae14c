package checkpoint

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"

	"github.com/go-redis/redis/v8"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
)

// compressionThreshold matches retrieval.SemanticCache's own threshold:
// payloads above this size are gzipped before storage, grounded on
// orchestration/redis_execution_store.go's compression-threshold pattern.
const compressionThreshold = 8 * 1024

// RedisStore is the production CheckpointStore: JSON-encoded
// OrchestratorState blobs in Redis, gzip-compressed above
// compressionThreshold, with no TTL (sessions persist until
// ClearSession/Delete removes them explicitly).
type RedisStore struct {
	client *redis.Client
	prefix string
	logger core.Logger
}

// NewRedisStore wraps an already-configured Redis client.
func NewRedisStore(client *redis.Client, logger core.Logger) *RedisStore {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &RedisStore{client: client, prefix: "orchestrator:checkpoint:", logger: logger}
}

func (r *RedisStore) Put(ctx context.Context, threadID string, state any) error {
	data, err := json.Marshal(state)
	if err != nil {
		return core.NewFrameworkError("checkpoint.RedisStore.Put", "checkpoint", err)
	}
	encoded, err := encode(data)
	if err != nil {
		return core.NewFrameworkError("checkpoint.RedisStore.Put", "checkpoint", err)
	}
	if err := r.client.Set(ctx, r.prefix+threadID, encoded, 0).Err(); err != nil {
		return core.NewFrameworkError("checkpoint.RedisStore.Put", "checkpoint", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context, threadID string, out any) (bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+threadID).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, core.NewFrameworkError("checkpoint.RedisStore.Get", "checkpoint", err)
	}
	data, err := decode(raw)
	if err != nil {
		return false, core.NewFrameworkError("checkpoint.RedisStore.Get", "checkpoint", core.ErrCheckpointCorrupt)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, core.NewFrameworkError("checkpoint.RedisStore.Get", "checkpoint", core.ErrCheckpointCorrupt)
	}
	return true, nil
}

func (r *RedisStore) Delete(ctx context.Context, threadID string) error {
	if err := r.client.Del(ctx, r.prefix+threadID).Err(); err != nil {
		return core.NewFrameworkError("checkpoint.RedisStore.Delete", "checkpoint", err)
	}
	return nil
}

func encode(data []byte) ([]byte, error) {
	if len(data) <= compressionThreshold {
		return append([]byte{0}, data...), nil
	}
	var buf bytes.Buffer
	buf.WriteByte(1)
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return nil, err
	}
	if err := gz.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}
	payload := data[1:]
	if data[0] == 1 {
		gz, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(gz); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	}
	return payload, nil
}
