package retrieval

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeywordIndex_SearchScoresByNormalizedTermCount(t *testing.T) {
	idx := NewKeywordIndex()
	idx.Upsert([]RetrievedDocument{
		{ID: "a", Content: "golang circuit breaker retry backoff"},
		{ID: "b", Content: "golang circuit breaker retry backoff extra padding words here"},
		{ID: "c", Content: "completely unrelated content about gardening"},
	})

	results := idx.Search("circuit breaker", 10)
	require.Len(t, results, 2)
	// "a" has the same matching terms but a shorter document, so its
	// normalized score is higher than "b"'s.
	assert.Equal(t, "a", results[0].ID)
	assert.Greater(t, results[0].Score, results[1].Score)
	for _, d := range results {
		assert.LessOrEqual(t, d.Score, 1.0)
		assert.Equal(t, SearchKeyword, d.SearchType)
	}
}

func TestKeywordIndex_DeleteRemovesDocument(t *testing.T) {
	idx := NewKeywordIndex()
	idx.Upsert([]RetrievedDocument{{ID: "a", Content: "hello world"}})
	idx.Delete([]string{"a"})
	assert.Empty(t, idx.Search("hello", 10))
}

func TestKeywordIndex_EmptyQueryReturnsNothing(t *testing.T) {
	idx := NewKeywordIndex()
	idx.Upsert([]RetrievedDocument{{ID: "a", Content: "hello world"}})
	assert.Empty(t, idx.Search("   ", 10))
}
