package agents

import (
	"context"
	"sort"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/mcp"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"
)

// SearchRequest is the search agent's input contract.
type SearchRequest struct {
	Query      string
	TopK       int
	Namespace  string
	Filter     map[string]any
	UseWebTool bool // whether the orchestrator's tool-enrichment step already ran a web search
	WebResults []mcp.SearchResult
}

// SearchResult is the search agent's output field: the Retrieval Engine's
// documents, with any MCP web-search hits appended as synthetic documents
// so both sources share one ranked list.
type SearchResult struct {
	Documents []retrieval.RetrievedDocument
}

// SearchAgent queries the Retrieval Engine directly, bypassing the full RAG
// pipeline's generation stages, and folds in MCP web results when the
// tool-enrichment step already ran one for this turn.
type SearchAgent struct {
	Hybrid *retrieval.HybridSearch
}

// Run executes the hybrid search and merges in any web results, sorted by
// score descending.
func (a *SearchAgent) Run(ctx context.Context, req SearchRequest) (SearchResult, error) {
	var docs []retrieval.RetrievedDocument
	if a.Hybrid != nil {
		found, err := a.Hybrid.Search(ctx, req.Query, req.TopK, req.Namespace, req.Filter)
		if err != nil {
			return SearchResult{}, err
		}
		docs = found
	}

	if req.UseWebTool {
		for i, w := range req.WebResults {
			docs = append(docs, retrieval.RetrievedDocument{
				ID:         "web:" + w.URL,
				Content:    w.Snippet,
				Score:      1.0 / float64(i+2), // rank-decayed, web results are unscored
				SearchType: retrieval.SearchKeyword,
				Metadata:   map[string]any{"source": "web", "url": w.URL, "title": w.Title},
			})
		}
	}

	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })
	if req.TopK > 0 && len(docs) > req.TopK {
		docs = docs[:req.TopK]
	}
	return SearchResult{Documents: docs}, nil
}
