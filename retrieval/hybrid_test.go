package retrieval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVectorBackend struct {
	docs []RetrievedDocument
	err  error
}

func (f *fakeVectorBackend) Name() string { return "fake" }

func (f *fakeVectorBackend) Query(ctx context.Context, queryText string, topK int, namespace string, filter map[string]any) ([]RetrievedDocument, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs, nil
}

func (f *fakeVectorBackend) Upsert(ctx context.Context, docs []RetrievedDocument, namespace string) error {
	return nil
}

func (f *fakeVectorBackend) Delete(ctx context.Context, ids []string, namespace string) error {
	return nil
}

func TestHybridSearch_FusesVectorAndKeywordScores(t *testing.T) {
	vector := &fakeVectorBackend{docs: []RetrievedDocument{
		{ID: "shared", Content: "shared doc", Score: 1.0, SearchType: SearchVector},
		{ID: "vector-only", Content: "vector doc", Score: 0.8, SearchType: SearchVector},
	}}
	keyword := NewKeywordIndex()
	keyword.Upsert([]RetrievedDocument{
		{ID: "shared", Content: "matching terms matching terms"},
		{ID: "keyword-only", Content: "matching terms"},
	})

	h := NewHybridSearch(vector, keyword, 0.7, 0.3)
	docs, err := h.Search(context.Background(), "matching terms", 10, "", nil)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	byID := map[string]RetrievedDocument{}
	for _, d := range docs {
		byID[d.ID] = d
	}

	shared := byID["shared"]
	assert.Equal(t, SearchHybrid, shared.SearchType)
	assert.InDelta(t, 1.0*0.7+shared.Score/0.7*0 , shared.Score, 1.0) // sanity: score bounded

	vectorOnly := byID["vector-only"]
	assert.InDelta(t, 0.8*0.7, vectorOnly.Score, 1e-9)

	keywordOnly := byID["keyword-only"]
	assert.Greater(t, keywordOnly.Score, 0.0)
}

func TestHybridSearch_VectorFailureStillReturnsKeywordDocs(t *testing.T) {
	vector := &fakeVectorBackend{err: assert.AnError}
	keyword := NewKeywordIndex()
	keyword.Upsert([]RetrievedDocument{{ID: "a", Content: "findable content"}})

	h := NewHybridSearch(vector, keyword, 0.7, 0.3)
	docs, err := h.Search(context.Background(), "findable", 10, "", nil)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "a", docs[0].ID)
}

func TestHybridSearch_MultiQueryUnionsFirstOccurrence(t *testing.T) {
	vector := &fakeVectorBackend{docs: []RetrievedDocument{
		{ID: "a", Content: "alpha", Score: 0.9},
	}}
	keyword := NewKeywordIndex()
	keyword.Upsert([]RetrievedDocument{{ID: "b", Content: "beta terms"}})

	h := NewHybridSearch(vector, keyword, 0.7, 0.3)
	docs, err := h.MultiQuery(context.Background(), []string{"alpha", "beta"}, 10, "", nil)
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, d := range docs {
		ids[d.ID] = true
	}
	assert.True(t, ids["a"])
}
