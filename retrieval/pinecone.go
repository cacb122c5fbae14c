package retrieval

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/v4/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeBackend is the primary VectorBackend: a thin adapter over the
// Pinecone gRPC data-plane client. An embedding function turns query text
// into a vector before every call; Pinecone itself stores vectors only.
type PineconeBackend struct {
	index     *pinecone.IndexConnection
	embed     EmbeddingFunc
	namespace string
}

// NewPineconeBackend wraps an index connection already resolved by the
// caller (host + namespace are per-index; the client only needs the API
// key and the target index's host to open one).
func NewPineconeBackend(index *pinecone.IndexConnection, embed EmbeddingFunc, namespace string) *PineconeBackend {
	return &PineconeBackend{index: index, embed: embed, namespace: namespace}
}

func (b *PineconeBackend) Name() string { return "pinecone" }

func (b *PineconeBackend) Query(ctx context.Context, queryText string, topK int, namespace string, filter map[string]any) ([]RetrievedDocument, error) {
	if namespace == "" {
		namespace = b.namespace
	}

	vector, err := b.embed(ctx, queryText)
	if err != nil {
		return nil, fmt.Errorf("pinecone: embed query: %w", err)
	}

	req := &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	}
	if len(filter) > 0 {
		metadataFilter, err := structpb.NewStruct(filter)
		if err != nil {
			return nil, fmt.Errorf("pinecone: build metadata filter: %w", err)
		}
		req.MetadataFilter = metadataFilter
	}

	resp, err := b.index.QueryByVectorValues(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("pinecone: query: %w", err)
	}

	docs := make([]RetrievedDocument, 0, len(resp.Matches))
	for _, match := range resp.Matches {
		meta := map[string]any{}
		content := ""
		if match.Vector.Metadata != nil {
			for k, v := range match.Vector.Metadata.AsMap() {
				meta[k] = v
			}
			if c, ok := meta["content"].(string); ok {
				content = c
			}
		}
		docs = append(docs, RetrievedDocument{
			ID:         match.Vector.Id,
			Content:    content,
			Score:      float64(match.Score),
			Metadata:   meta,
			SearchType: SearchVectorPinecone,
		})
	}
	return docs, nil
}

func (b *PineconeBackend) Upsert(ctx context.Context, docs []RetrievedDocument, namespace string) error {
	if namespace == "" {
		namespace = b.namespace
	}

	vectors := make([]*pinecone.Vector, 0, len(docs))
	for _, doc := range docs {
		vector, err := b.embed(ctx, doc.Content)
		if err != nil {
			return fmt.Errorf("pinecone: embed document %s: %w", doc.ID, err)
		}
		meta := map[string]any{"content": doc.Content}
		for k, v := range doc.Metadata {
			meta[k] = v
		}
		metadataStruct, err := structpb.NewStruct(meta)
		if err != nil {
			return fmt.Errorf("pinecone: build metadata for %s: %w", doc.ID, err)
		}
		vectors = append(vectors, &pinecone.Vector{
			Id:       doc.ID,
			Values:   &vector,
			Metadata: metadataStruct,
		})
	}

	if _, err := b.index.UpsertVectors(ctx, vectors); err != nil {
		return fmt.Errorf("pinecone: upsert %d vectors: %w", len(vectors), err)
	}
	return nil
}

func (b *PineconeBackend) Delete(ctx context.Context, ids []string, namespace string) error {
	if err := b.index.DeleteVectorsById(ctx, ids); err != nil {
		return fmt.Errorf("pinecone: delete %d vectors: %w", len(ids), err)
	}
	return nil
}
