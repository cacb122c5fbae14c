package retrieval

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkoukk/tiktoken-go"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
)

// compressionThreshold matches the byte size above which cache payloads are
// gzipped before storage.
const compressionThreshold = 8 * 1024

// SemanticCacheEntry is one cached RAG response, keyed by a normalized
// hash of the query text.
type SemanticCacheEntry struct {
	Key       string
	Response  string
	Metadata  map[string]any
	Timestamp time.Time
	ExpiresAt time.Time
}

// CacheKey normalizes a query (lowercase, trimmed) into the exact cache
// key used by both the semantic cache and the embedding cache.
func CacheKey(query string) string {
	normalized := strings.TrimSpace(strings.ToLower(query))
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

// SemanticCache is a TTL-bounded exact-query-to-answer memo. It prefers a
// Redis backend (shared across process restarts and replicas) and falls
// back to an in-process map when Redis is unreachable, mirroring the
// checkpoint store's same dual-backend shape.
type SemanticCache struct {
	redis  *redis.Client
	mem    map[string]SemanticCacheEntry
	mu     sync.RWMutex
	ttl    time.Duration
	prefix string
	logger core.Logger
}

// NewSemanticCache builds a cache. redisClient may be nil, in which case
// the cache runs purely in-memory for the lifetime of the process.
func NewSemanticCache(redisClient *redis.Client, ttl time.Duration, logger core.Logger) *SemanticCache {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SemanticCache{
		redis:  redisClient,
		mem:    make(map[string]SemanticCacheEntry),
		ttl:    ttl,
		prefix: "rag:semantic_cache:",
		logger: logger,
	}
}

// Get returns the cached entry for a query if it is still TTL-valid.
func (c *SemanticCache) Get(ctx context.Context, query string) (SemanticCacheEntry, bool) {
	key := CacheKey(query)

	if c.redis != nil {
		data, err := c.redis.Get(ctx, c.prefix+key).Bytes()
		if err == nil {
			entry, decodeErr := decodeCacheEntry(data)
			if decodeErr == nil && time.Now().Before(entry.ExpiresAt) {
				return entry, true
			}
		} else if err != redis.Nil {
			c.logger.Warn("semantic cache redis get failed, falling back to memory", map[string]interface{}{"error": err.Error()})
		}
	}

	c.mu.RLock()
	entry, ok := c.mem[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.ExpiresAt) {
		return SemanticCacheEntry{}, false
	}
	return entry, true
}

// Set inserts a response under the query's normalized key with the
// cache's configured TTL.
func (c *SemanticCache) Set(ctx context.Context, query, response string, metadata map[string]any) {
	now := time.Now()
	entry := SemanticCacheEntry{
		Key:       CacheKey(query),
		Response:  response,
		Metadata:  metadata,
		Timestamp: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	c.mem[entry.Key] = entry
	c.mu.Unlock()

	if c.redis == nil {
		return
	}
	data, err := encodeCacheEntry(entry)
	if err != nil {
		c.logger.Warn("semantic cache encode failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if err := c.redis.Set(ctx, c.prefix+entry.Key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("semantic cache redis set failed", map[string]interface{}{"error": err.Error()})
	}
}

// Clear removes one query's cached entry from both tiers.
func (c *SemanticCache) Clear(ctx context.Context, query string) {
	key := CacheKey(query)
	c.mu.Lock()
	delete(c.mem, key)
	c.mu.Unlock()
	if c.redis != nil {
		_ = c.redis.Del(ctx, c.prefix+key).Err()
	}
}

func encodeCacheEntry(entry SemanticCacheEntry) ([]byte, error) {
	data, err := json.Marshal(entry)
	if err != nil {
		return nil, err
	}
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

func decodeCacheEntry(data []byte) (SemanticCacheEntry, error) {
	var entry SemanticCacheEntry
	if len(data) == 0 {
		return entry, nil
	}
	payload := data[1:]
	if data[0] == 1 {
		gz, err := gzip.NewReader(bytes.NewReader(payload))
		if err != nil {
			return entry, err
		}
		defer gz.Close()
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(gz); err != nil {
			return entry, err
		}
		payload = buf.Bytes()
	}
	err := json.Unmarshal(payload, &entry)
	return entry, err
}

// EmbeddingCache memoizes embedding vectors by normalized text key,
// avoiding repeat provider calls for identical content across queries
// and document upserts within TTL.
type EmbeddingCache struct {
	mu   sync.RWMutex
	ttl  time.Duration
	data map[string]embeddingCacheEntry
}

type embeddingCacheEntry struct {
	vector    []float32
	expiresAt time.Time
}

// NewEmbeddingCache builds an in-process embedding cache. It is
// process-wide by convention (one instance shared across the retrieval
// engine), read-mostly, and safe for concurrent use.
func NewEmbeddingCache(ttl time.Duration) *EmbeddingCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &EmbeddingCache{ttl: ttl, data: make(map[string]embeddingCacheEntry)}
}

// Wrap returns an EmbeddingFunc that checks the cache before delegating to
// the underlying embedding function.
func (c *EmbeddingCache) Wrap(fn EmbeddingFunc) EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		key := CacheKey(text)

		c.mu.RLock()
		entry, ok := c.data[key]
		c.mu.RUnlock()
		if ok && time.Now().Before(entry.expiresAt) {
			return entry.vector, nil
		}

		vector, err := fn(ctx, text)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.data[key] = embeddingCacheEntry{vector: vector, expiresAt: time.Now().Add(c.ttl)}
		c.mu.Unlock()
		return vector, nil
	}
}

// TokenEstimator estimates token counts for prompt/context budgeting. The
// RAG pipeline does not call it: its context-build and
// prompt-optimization stages budget by character counts.
type TokenEstimator struct {
	encoding *tiktoken.Tiktoken
}

// NewTokenEstimator builds an estimator using the cl100k_base encoding,
// the one every OpenAI chat-completion-family model in this engine uses.
func NewTokenEstimator() (*TokenEstimator, error) {
	encoding, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return nil, err
	}
	return &TokenEstimator{encoding: encoding}, nil
}

// Estimate returns the token count for a piece of text.
func (t *TokenEstimator) Estimate(text string) int {
	return len(t.encoding.Encode(text, nil, nil))
}
