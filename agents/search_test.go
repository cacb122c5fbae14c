package agents

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/mcp"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"
)

func TestSearchAgent_MergesHybridAndWebResults(t *testing.T) {
	mem := retrieval.NewMemoryBackend(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	})
	_ = mem.Upsert(context.Background(), []retrieval.RetrievedDocument{
		{ID: "doc1", Content: "onboarding basics"},
	}, "")
	kw := retrieval.NewKeywordIndex()
	kw.Upsert([]retrieval.RetrievedDocument{{ID: "doc1", Content: "onboarding basics"}})
	hybrid := retrieval.NewHybridSearch(mem, kw, 0.7, 0.3)

	agent := &SearchAgent{Hybrid: hybrid}
	result, err := agent.Run(context.Background(), SearchRequest{
		Query:      "onboarding",
		TopK:       5,
		UseWebTool: true,
		WebResults: []mcp.SearchResult{{URL: "https://example.com", Title: "Example", Snippet: "onboarding guide"}},
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.Documents)

	var sawWeb bool
	for _, d := range result.Documents {
		if d.Metadata["source"] == "web" {
			sawWeb = true
		}
	}
	assert.True(t, sawWeb)
}

func TestSearchAgent_TopKTruncates(t *testing.T) {
	agent := &SearchAgent{}
	result, err := agent.Run(context.Background(), SearchRequest{
		TopK:       1,
		UseWebTool: true,
		WebResults: []mcp.SearchResult{
			{URL: "a", Snippet: "a"},
			{URL: "b", Snippet: "b"},
		},
	})
	require.NoError(t, err)
	assert.Len(t, result.Documents, 1)
}
