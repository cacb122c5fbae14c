package mcp

import (
	"context"
)

// SearchResult is one hit from the web search tool.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// FetchResult is the extracted content of one fetched URL.
type FetchResult struct {
	URL     string `json:"url"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
	OK      bool   `json:"ok"`
}

// WebTool wraps the "web" MCP server's search and fetch operations.
type WebTool struct {
	Session Session
	Policy  Policy
}

// Search runs a bounded web search. On circuit-open or exhausted retries it
// returns an empty, ok=false result rather than propagating the error: a
// tool_enrichment failure degrades gracefully instead of aborting the
// orchestrator turn.
func (t WebTool) Search(ctx context.Context, query string, limit int) ([]SearchResult, ExecutionRecord) {
	results, rec := Execute(ctx, "web.search", t.Policy, func(ctx context.Context) ([]SearchResult, error) {
		raw, err := t.Session.CallTool(ctx, "web_search", map[string]any{
			"query": query,
			"limit": limit,
		})
		if err != nil {
			return nil, err
		}
		return decodeSearchResults(raw), nil
	})
	if !rec.OK {
		return nil, rec
	}
	return results, rec
}

// Fetch retrieves and extracts the content of up to maxURLs URLs.
func (t WebTool) Fetch(ctx context.Context, urls []string) ([]FetchResult, ExecutionRecord) {
	if len(urls) > maxURLs {
		urls = urls[:maxURLs]
	}
	results, rec := Execute(ctx, "web.fetch", t.Policy, func(ctx context.Context) ([]FetchResult, error) {
		raw, err := t.Session.CallTool(ctx, "web_fetch", map[string]any{"urls": urls})
		if err != nil {
			return nil, err
		}
		return decodeFetchResults(raw, urls), nil
	})
	if !rec.OK {
		return nil, rec
	}
	return results, rec
}

func decodeSearchResults(raw map[string]any) []SearchResult {
	items, _ := raw["results"].([]any)
	out := make([]SearchResult, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		out = append(out, SearchResult{
			Title:   stringField(m, "title"),
			URL:     stringField(m, "url"),
			Snippet: stringField(m, "snippet"),
		})
	}
	return out
}

func decodeFetchResults(raw map[string]any, urls []string) []FetchResult {
	items, _ := raw["results"].([]any)
	out := make([]FetchResult, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url := stringField(m, "url")
		if url == "" && i < len(urls) {
			url = urls[i]
		}
		out = append(out, FetchResult{
			URL:     url,
			Title:   stringField(m, "title"),
			Content: stringField(m, "content"),
			OK:      m["ok"] != false,
		})
	}
	return out
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}
