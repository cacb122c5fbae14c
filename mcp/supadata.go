package mcp

import "context"

// ScrapeResult is one scraped page from Supadata.
type ScrapeResult struct {
	URL     string `json:"url"`
	Content string `json:"content"`
	OK      bool   `json:"ok"`
}

// TranscriptResult is one video/audio transcript from Supadata.
type TranscriptResult struct {
	URL        string `json:"url"`
	Transcript string `json:"transcript"`
	Lang       string `json:"lang,omitempty"`
	OK         bool   `json:"ok"`
}

// SupadataResult bundles whichever operations the request asked for.
type SupadataResult struct {
	Scrapes     []ScrapeResult     `json:"scrapes,omitempty"`
	Transcripts []TranscriptResult `json:"transcripts,omitempty"`
	MapURLs     []string           `json:"map_urls,omitempty"`
	CrawlPages  []ScrapeResult     `json:"crawl_pages,omitempty"`
}

// SupadataTool wraps the "supadata" MCP server's scrape/transcript/map/crawl
// operations. Each sub-operation executes as its own breaker-guarded call,
// so a transcript failure does not block scrape results in the same pass.
type SupadataTool struct {
	Session Session
	Policy  Policy
}

// Run executes every operation present in spec and merges their results.
// The returned map carries one ExecutionRecord per sub-operation actually
// attempted, keyed by tool name; callers fold these into the session's
// tool execution trail.
func (t SupadataTool) Run(ctx context.Context, spec SupadataSpec) (SupadataResult, map[string]ExecutionRecord) {
	var result SupadataResult
	recs := map[string]ExecutionRecord{}

	if len(spec.ScrapeURLs) > 0 {
		scrapes, rec := Execute(ctx, "supadata.scrape", t.Policy, func(ctx context.Context) ([]ScrapeResult, error) {
			raw, err := t.Session.CallTool(ctx, "supadata_scrape", map[string]any{
				"urls":     spec.ScrapeURLs,
				"no_links": spec.NoLinks,
			})
			if err != nil {
				return nil, err
			}
			return decodeScrapeResults(raw, "results", spec.ScrapeURLs), nil
		})
		recs["supadata.scrape"] = rec
		if rec.OK {
			result.Scrapes = scrapes
		}
	}

	if len(spec.TranscriptURLs) > 0 {
		transcripts, rec := Execute(ctx, "supadata.transcript", t.Policy, func(ctx context.Context) ([]TranscriptResult, error) {
			raw, err := t.Session.CallTool(ctx, "supadata_transcript", map[string]any{
				"urls": spec.TranscriptURLs,
				"lang": spec.Lang,
				"text": spec.TranscriptText,
				"mode": spec.TranscriptMode,
			})
			if err != nil {
				return nil, err
			}
			return decodeTranscriptResults(raw, spec.TranscriptURLs), nil
		})
		recs["supadata.transcript"] = rec
		if rec.OK {
			result.Transcripts = transcripts
		}
	}

	if spec.MapURL != "" {
		urls, rec := Execute(ctx, "supadata.map", t.Policy, func(ctx context.Context) ([]string, error) {
			raw, err := t.Session.CallTool(ctx, "supadata_map", map[string]any{"url": spec.MapURL})
			if err != nil {
				return nil, err
			}
			return decodeStringList(raw, "urls"), nil
		})
		recs["supadata.map"] = rec
		if rec.OK {
			result.MapURLs = urls
		}
	}

	if spec.CrawlURL != "" {
		pages, rec := Execute(ctx, "supadata.crawl", t.Policy, func(ctx context.Context) ([]ScrapeResult, error) {
			raw, err := t.Session.CallTool(ctx, "supadata_crawl", map[string]any{
				"url":   spec.CrawlURL,
				"limit": spec.CrawlLimit,
			})
			if err != nil {
				return nil, err
			}
			return decodeScrapeResults(raw, "pages", nil), nil
		})
		recs["supadata.crawl"] = rec
		if rec.OK {
			result.CrawlPages = pages
		}
	}

	return result, recs
}

func decodeScrapeResults(raw map[string]any, key string, fallbackURLs []string) []ScrapeResult {
	items, _ := raw[key].([]any)
	out := make([]ScrapeResult, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url := stringField(m, "url")
		if url == "" && i < len(fallbackURLs) {
			url = fallbackURLs[i]
		}
		out = append(out, ScrapeResult{
			URL:     url,
			Content: stringField(m, "content"),
			OK:      m["ok"] != false,
		})
	}
	return out
}

func decodeTranscriptResults(raw map[string]any, fallbackURLs []string) []TranscriptResult {
	items, _ := raw["results"].([]any)
	out := make([]TranscriptResult, 0, len(items))
	for i, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		url := stringField(m, "url")
		if url == "" && i < len(fallbackURLs) {
			url = fallbackURLs[i]
		}
		out = append(out, TranscriptResult{
			URL:        url,
			Transcript: stringField(m, "transcript"),
			Lang:       stringField(m, "lang"),
			OK:         m["ok"] != false,
		})
	}
	return out
}

func decodeStringList(raw map[string]any, key string) []string {
	items, _ := raw[key].([]any)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
