// Package retrieval is the Retrieval Engine: a pluggable vector backend, an
// in-memory keyword index, weighted hybrid fusion, an optional
// cross-encoder reranker, and per-query/per-embedding caches.
package retrieval

import "context"

// SearchType names which retrieval path produced a RetrievedDocument.
type SearchType string

const (
	SearchVector         SearchType = "vector"
	SearchKeyword        SearchType = "keyword"
	SearchHybrid         SearchType = "hybrid"
	SearchVectorPinecone SearchType = "vector_pinecone"
)

// RetrievedDocument is one retrieval hit, shared across rerank, context
// building, and final synthesis. Duplicates across search types are
// resolved by Id.
type RetrievedDocument struct {
	ID         string
	Content    string
	Score      float64 // [0,1]
	Metadata   map[string]any
	SearchType SearchType
}

// EmbeddingFunc produces a dense vector for a piece of text. Both the
// vector backends and the embedding cache depend on this seam rather than
// a concrete provider client.
type EmbeddingFunc func(ctx context.Context, text string) ([]float32, error)

// VectorBackend is the wire contract every vector store adapter
// implements: query, upsert, delete by id.
type VectorBackend interface {
	Query(ctx context.Context, queryText string, topK int, namespace string, filter map[string]any) ([]RetrievedDocument, error)
	Upsert(ctx context.Context, docs []RetrievedDocument, namespace string) error
	Delete(ctx context.Context, ids []string, namespace string) error
	Name() string
}
