package mcp

import (
	"context"
	"sync"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
)

// ReasonCode explains why tool_enrichment did or did not run.
type ReasonCode string

const (
	ReasonOK          ReasonCode = "ok"
	ReasonNotNeeded   ReasonCode = "not_needed"
	ReasonNoSpecOrSvc ReasonCode = "no_spec_or_service"
	ReasonError       ReasonCode = "error"
)

// WebSources records what the web tool was asked and given back, for the
// external_sources.web audit field.
type WebSources struct {
	Query string   `json:"query,omitempty"`
	URLs  []string `json:"urls,omitempty"`
}

// ExternalSources is the audit-facing summary of what was requested.
type ExternalSources struct {
	Web      *WebSources   `json:"web,omitempty"`
	Supadata *SupadataSpec `json:"supadata,omitempty"`
}

// Output is the merged result of one tool_enrichment pass.
type Output struct {
	Ran              bool                       `json:"ran"`
	Reason           ReasonCode                 `json:"reason"`
	ExternalSnippets []string                   `json:"external_snippets,omitempty"`
	ExternalSources  *ExternalSources           `json:"external_sources,omitempty"`
	YouTubeInsights  *YouTubeResult             `json:"youtube_insights,omitempty"`
	Supadata         *SupadataResult            `json:"supadata,omitempty"`
	ToolPolicy       map[string]ExecutionRecord `json:"tool_policy"`
}

// Service is the MCP Integration Service: it sanitizes a per-agent Spec,
// dispatches web/youtube/supadata calls under the configured priority
// policy, and merges results into one Output.
type Service struct {
	Web      *WebTool
	YouTube  *YouTubeTool
	Supadata *SupadataTool
	Logger   core.Logger
}

// Enrich runs one tool_enrichment pass. needsTools gates whether the
// service is consulted at all; a nil spec or an unconfigured Service
// short-circuits with ReasonNoSpecOrSvc.
func (s *Service) Enrich(ctx context.Context, needsTools bool, spec *Spec) Output {
	out := Output{ToolPolicy: map[string]ExecutionRecord{}}

	if !needsTools {
		out.Reason = ReasonNotNeeded
		return out
	}
	if spec == nil || (s.Web == nil && s.Supadata == nil && s.YouTube == nil) {
		out.Reason = ReasonNoSpecOrSvc
		return out
	}

	sanitized := Sanitize(*spec)
	out.Ran = true
	out.Reason = ReasonOK

	if s.YouTube != nil && sanitized.YouTube != nil {
		yt, rec := s.YouTube.Metadata(ctx, *sanitized.YouTube)
		out.ToolPolicy["youtube"] = rec
		if rec.OK {
			out.YouTubeInsights = &yt
		}
	}

	switch {
	case sanitized.ToolPriority == PriorityParallel:
		s.runParallel(ctx, sanitized, &out)
	case sanitized.ToolPriority == PrioritySupadataFirst || hasSupadataURLs(sanitized):
		s.runSupadataFirst(ctx, sanitized, &out)
	default:
		s.runWebFirst(ctx, sanitized, &out)
	}

	if len(out.ToolPolicy) > 0 {
		allFailed := true
		for _, rec := range out.ToolPolicy {
			if rec.OK {
				allFailed = false
				break
			}
		}
		if allFailed {
			out.Reason = ReasonError
		}
	}

	return out
}

func hasSupadataURLs(spec Spec) bool {
	if spec.Supadata == nil {
		return false
	}
	return len(spec.Supadata.ScrapeURLs) > 0 || len(spec.Supadata.TranscriptURLs) > 0
}

func (s *Service) runParallel(ctx context.Context, spec Spec, out *Output) {
	var wg sync.WaitGroup
	var mu sync.Mutex

	if s.Web != nil && spec.SearchQuery != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, rec := s.Web.Search(ctx, spec.SearchQuery, spec.WebLimit)
			mu.Lock()
			defer mu.Unlock()
			out.ToolPolicy["web"] = rec
			if rec.OK {
				mergeWebSnippets(out, spec.SearchQuery, results)
			}
		}()
	}

	if s.Supadata != nil && spec.Supadata != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, recs := s.Supadata.Run(ctx, *spec.Supadata)
			mu.Lock()
			defer mu.Unlock()
			anyOK := false
			for name, rec := range recs {
				out.ToolPolicy[name] = rec
				anyOK = anyOK || rec.OK
			}
			if anyOK {
				out.Supadata = &result
				if out.ExternalSources == nil {
					out.ExternalSources = &ExternalSources{}
				}
				out.ExternalSources.Supadata = spec.Supadata
			}
		}()
	}

	wg.Wait()
}

func (s *Service) runSupadataFirst(ctx context.Context, spec Spec, out *Output) {
	gotResults := false
	if s.Supadata != nil && spec.Supadata != nil {
		result, recs := s.Supadata.Run(ctx, *spec.Supadata)
		for name, rec := range recs {
			out.ToolPolicy[name] = rec
		}
		if len(result.Scrapes) > 0 || len(result.Transcripts) > 0 || len(result.CrawlPages) > 0 {
			gotResults = true
			out.Supadata = &result
			out.ExternalSources = &ExternalSources{Supadata: spec.Supadata}
		}
	}

	if !gotResults && s.Web != nil && spec.SearchQuery != "" {
		results, rec := s.Web.Search(ctx, spec.SearchQuery, spec.WebLimit)
		out.ToolPolicy["web"] = rec
		if rec.OK {
			mergeWebSnippets(out, spec.SearchQuery, results)
		}
	}
}

func (s *Service) runWebFirst(ctx context.Context, spec Spec, out *Output) {
	var webURLs []string
	if s.Web != nil && spec.SearchQuery != "" {
		results, rec := s.Web.Search(ctx, spec.SearchQuery, spec.WebLimit)
		out.ToolPolicy["web"] = rec
		if rec.OK {
			mergeWebSnippets(out, spec.SearchQuery, results)
			for _, r := range results {
				webURLs = append(webURLs, r.URL)
			}
		}
	}

	if s.Supadata != nil && len(webURLs) > 0 && len(spec.URLs) > 0 {
		secondPass := SupadataSpec{ScrapeURLs: spec.URLs}
		result, recs := s.Supadata.Run(ctx, secondPass)
		anyOK := false
		for name, rec := range recs {
			out.ToolPolicy[name+"_second_pass"] = rec
			anyOK = anyOK || rec.OK
		}
		if anyOK {
			out.Supadata = &result
		}
	}
}

func mergeWebSnippets(out *Output, query string, results []SearchResult) {
	urls := make([]string, 0, len(results))
	for _, r := range results {
		out.ExternalSnippets = append(out.ExternalSnippets, r.Snippet)
		urls = append(urls, r.URL)
	}
	if out.ExternalSources == nil {
		out.ExternalSources = &ExternalSources{}
	}
	out.ExternalSources.Web = &WebSources{Query: query, URLs: urls}
}
