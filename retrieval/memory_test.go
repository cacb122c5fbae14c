package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeEmbed(vectors map[string][]float32) EmbeddingFunc {
	return func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 0}, nil
	}
}

func TestMemoryBackend_QueryRanksByCosineSimilarity(t *testing.T) {
	vectors := map[string][]float32{
		"doc-a":      {1, 0, 0},
		"doc-b":      {0, 1, 0},
		"query text": {1, 0, 0},
	}
	backend := NewMemoryBackend(fakeEmbed(vectors))

	err := backend.Upsert(context.Background(), []RetrievedDocument{
		{ID: "a", Content: "doc-a"},
		{ID: "b", Content: "doc-b"},
	}, "")
	require.NoError(t, err)

	docs, err := backend.Query(context.Background(), "query text", 2, "", nil)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "a", docs[0].ID)
	assert.InDelta(t, 1.0, docs[0].Score, 1e-9)
	assert.GreaterOrEqual(t, docs[0].Score, docs[1].Score)
	for _, d := range docs {
		assert.GreaterOrEqual(t, d.Score, 0.0)
		assert.LessOrEqual(t, d.Score, 1.0)
	}
}

func TestMemoryBackend_DeleteRemovesDocument(t *testing.T) {
	backend := NewMemoryBackend(fakeEmbed(nil))
	require.NoError(t, backend.Upsert(context.Background(), []RetrievedDocument{{ID: "a", Content: "x"}}, ""))
	require.NoError(t, backend.Delete(context.Background(), []string{"a"}, ""))

	docs, err := backend.Query(context.Background(), "x", 5, "", nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
}
