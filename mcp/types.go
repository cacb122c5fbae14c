// Package mcp implements the typed wrappers around three tool families:
// web search + HTTP fetch, YouTube metadata, and Supadata scrape/transcript,
// each fronted by a circuit breaker, bounded retry, and per-call timeout.
// The wire transport is the official Model-Context-Protocol SDK
// (github.com/modelcontextprotocol/go-sdk).
package mcp

import "strings"

// ToolFamily names one of the three tool groups.
type ToolFamily string

const (
	FamilyWeb      ToolFamily = "web"
	FamilyYouTube  ToolFamily = "youtube"
	FamilySupadata ToolFamily = "supadata"
)

// ToolPriority decides how web and supadata are sequenced in one
// enrichment pass.
type ToolPriority string

const (
	PriorityParallel      ToolPriority = "parallel"
	PrioritySupadataFirst ToolPriority = "supadata_first"
	PriorityWebFirst      ToolPriority = ""
)

// YouTubeSpec requests YouTube metadata lookups.
type YouTubeSpec struct {
	ChannelID     string   `json:"channel_id,omitempty"`
	ChannelHandle string   `json:"channel_handle,omitempty"`
	VideoIDs      []string `json:"video_ids,omitempty"`
}

// SupadataSpec requests Supadata scrape/transcript/map/crawl operations.
type SupadataSpec struct {
	ScrapeURLs     []string `json:"scrape_urls,omitempty"`
	TranscriptURLs []string `json:"transcript_urls,omitempty"`
	MapURL         string   `json:"map_url,omitempty"`
	CrawlURL       string   `json:"crawl_url,omitempty"`
	CrawlLimit     int      `json:"crawl_limit,omitempty"`
	Lang           string   `json:"lang,omitempty"`
	NoLinks        bool     `json:"no_links,omitempty"`
	TranscriptText bool     `json:"transcript_text,omitempty"`
	TranscriptMode string   `json:"transcript_mode,omitempty"`
}

// Spec is the per-agent tool request, built from orchestrator state plus
// agent policy before a tool_enrichment pass.
type Spec struct {
	SearchQuery  string        `json:"search_query,omitempty"`
	URLs         []string      `json:"urls,omitempty"`
	WebLimit     int           `json:"web_limit,omitempty"`
	ToolPriority ToolPriority  `json:"tool_priority,omitempty"`
	YouTube      *YouTubeSpec  `json:"youtube,omitempty"`
	Supadata     *SupadataSpec `json:"supadata,omitempty"`
}

// Sanitization limits.
const (
	maxURLs           = 6
	maxWebLimit       = 6
	maxVideoIDs       = 10
	maxScrapeURLs     = 8
	maxTranscriptURLs = 5
	maxCrawlLimit     = 200
	minCrawlLimit     = 1
)

func isHTTPURL(u string) bool {
	return strings.HasPrefix(u, "http://") || strings.HasPrefix(u, "https://")
}

func clampURLs(urls []string, max int) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if isHTTPURL(u) {
			out = append(out, u)
		}
		if len(out) == max {
			break
		}
	}
	return out
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Sanitize drops non-http(s) URLs and clamps every list length and the
// crawl_limit/web_limit fields to their caps. Sanitizing an
// already-sanitized Spec is idempotent.
func Sanitize(spec Spec) Spec {
	out := spec
	out.URLs = clampURLs(spec.URLs, maxURLs)

	webLimit := spec.WebLimit
	if webLimit <= 0 {
		webLimit = maxWebLimit
	}
	out.WebLimit = clampInt(webLimit, 1, maxWebLimit)

	if spec.YouTube != nil {
		yt := *spec.YouTube
		if len(yt.VideoIDs) > maxVideoIDs {
			yt.VideoIDs = yt.VideoIDs[:maxVideoIDs]
		}
		out.YouTube = &yt
	}

	if spec.Supadata != nil {
		sd := *spec.Supadata
		sd.ScrapeURLs = clampURLs(sd.ScrapeURLs, maxScrapeURLs)
		sd.TranscriptURLs = clampURLs(sd.TranscriptURLs, maxTranscriptURLs)
		if sd.MapURL != "" && !isHTTPURL(sd.MapURL) {
			sd.MapURL = ""
		}
		if sd.CrawlURL != "" && !isHTTPURL(sd.CrawlURL) {
			sd.CrawlURL = ""
		}
		if sd.CrawlLimit <= 0 {
			sd.CrawlLimit = maxCrawlLimit
		}
		sd.CrawlLimit = clampInt(sd.CrawlLimit, minCrawlLimit, maxCrawlLimit)
		out.Supadata = &sd
	}

	return out
}
