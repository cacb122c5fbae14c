package retrieval

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryBackend is the in-process VectorBackend for tests and for running
// without Pinecone or Qdrant. Nothing switches to it automatically when a
// remote backend is unreachable. It holds every document's embedding in memory
// and scores queries by brute-force cosine similarity — fine for the
// corpus sizes a single process handles, not meant to scale past that.
type MemoryBackend struct {
	mu    sync.RWMutex
	embed EmbeddingFunc
	docs  map[string]memoryEntry
}

type memoryEntry struct {
	doc    RetrievedDocument
	vector []float32
}

// NewMemoryBackend builds an empty in-memory vector store.
func NewMemoryBackend(embed EmbeddingFunc) *MemoryBackend {
	return &MemoryBackend{embed: embed, docs: make(map[string]memoryEntry)}
}

func (b *MemoryBackend) Name() string { return "memory" }

func (b *MemoryBackend) Query(ctx context.Context, queryText string, topK int, namespace string, filter map[string]any) ([]RetrievedDocument, error) {
	queryVector, err := b.embed(ctx, queryText)
	if err != nil {
		return nil, err
	}

	b.mu.RLock()
	scored := make([]RetrievedDocument, 0, len(b.docs))
	for _, entry := range b.docs {
		if !matchesFilter(entry.doc.Metadata, filter) {
			continue
		}
		d := entry.doc
		d.Score = cosineSimilarity(queryVector, entry.vector)
		d.SearchType = SearchVector
		scored = append(scored, d)
	}
	b.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (b *MemoryBackend) Upsert(ctx context.Context, docs []RetrievedDocument, namespace string) error {
	for _, doc := range docs {
		vector, err := b.embed(ctx, doc.Content)
		if err != nil {
			return err
		}
		b.mu.Lock()
		b.docs[doc.ID] = memoryEntry{doc: doc, vector: vector}
		b.mu.Unlock()
	}
	return nil
}

func (b *MemoryBackend) Delete(ctx context.Context, ids []string, namespace string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range ids {
		delete(b.docs, id)
	}
	return nil
}

func matchesFilter(metadata map[string]any, filter map[string]any) bool {
	for k, want := range filter {
		if got, ok := metadata[k]; !ok || got != want {
			return false
		}
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}
