// Package agents implements the stateless domain agents: creator
// onboarding, mission recommendation, analytics, competency, search, and
// the thin recommendation/integration/data-collection contracts. Each
// agent is an idempotent async unit consuming shared orchestrator state
// plus MCP-enriched context and writing back exactly one output field.
package agents

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/mcp"
)

// Grade is the creator evaluation letter grade.
type Grade string

const (
	GradeS Grade = "S"
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
)

// Decision is the onboarding decision for a creator.
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionHold   Decision = "hold"
	DecisionReject Decision = "reject"
)

// CreatorMetrics is the raw, caller-supplied or MCP-scraped creator signal
// set feeding the scoring model.
type CreatorMetrics struct {
	Followers      float64
	AvgLikes       float64
	AvgComments    float64
	PostsPerWeek   float64
	EngagementRate float64 // e.g. 3.4 means 3.4%
	Posts30d       float64
	Reports90d     float64
	BrandFit       float64 // [0,1]
}

// ScoreBreakdown is the component-wise score contribution, each already
// capped at its slot's share of the total.
type ScoreBreakdown struct {
	Followers  float64
	Engagement float64
	Frequency  float64
	BrandFit   float64
}

// RAGEnhancement threads the four parallel RAG lookups the creator
// onboarding agent can optionally run: similar creators, category
// insights, risk analysis, and market context.
type RAGEnhancement struct {
	SimilarCreators string
	CategoryInsight string
	RiskAnalysis    string
	MarketContext   string
}

// EvaluationResult is the creator onboarding agent's output field.
type EvaluationResult struct {
	Success        bool
	Platform       string
	Handle         string
	Decision       Decision
	Grade          Grade
	Score          float64
	ScoreBreakdown ScoreBreakdown
	Tags           []string
	Risks          []string
	Report         string
	RawProfile     map[string]any
	RAGEnhanced    bool
}

// CreatorRequest is the creator onboarding agent's input contract.
type CreatorRequest struct {
	Platform   string
	Handle     string
	ProfileURL string
	Metrics    *CreatorMetrics
}

// ragLookup is the narrow seam the creator agent needs from the RAG
// pipeline for its optional enhancement pass.
type ragLookup interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// CreatorAgent evaluates a creator profile against the onboarding scoring
// model, optionally scraping a profile via the Supadata MCP tool and
// enriching the final report with RAG lookups.
type CreatorAgent struct {
	MCP    *mcp.Service
	RAG    ragLookup
	Engine *generation.Engine
	Logger core.Logger
}

var followerPattern = regexp.MustCompile(`(?i)([\d,.]+)\s*(k|m)?\s*followers`)
var engagementPattern = regexp.MustCompile(`(?i)engagement\s*rate[:\s]*([\d.]+)\s*%?`)

// Evaluate runs the creator onboarding scoring model end-to-end.
func (a *CreatorAgent) Evaluate(ctx context.Context, req CreatorRequest) EvaluationResult {
	metrics := req.Metrics
	rawProfile := map[string]any{}

	if metrics == nil && a.MCP != nil && req.ProfileURL != "" {
		scraped, profile := a.scrapeProfile(ctx, req.ProfileURL)
		metrics = scraped
		rawProfile = profile
	}
	if metrics == nil {
		metrics = &CreatorMetrics{}
	}

	breakdown, tags, risks := score(*metrics)
	total := breakdown.Followers + breakdown.Engagement + breakdown.Frequency + breakdown.BrandFit
	total = clamp(total, 0, 1)
	for _, risk := range risks {
		switch risk {
		case "high_reports":
			total -= 0.15
		case "low_engagement":
			total -= 0.10
		case "low_activity":
			total -= 0.05
		}
	}
	total = clamp(total, 0, 1)
	finalScore := math.Round(total*100*10) / 10

	grade := gradeFor(finalScore)
	decision := decisionFor(finalScore, tags)

	result := EvaluationResult{
		Success:        true,
		Platform:       req.Platform,
		Handle:         req.Handle,
		Decision:       decision,
		Grade:          grade,
		Score:          finalScore,
		ScoreBreakdown: breakdown,
		Tags:           tags,
		Risks:          risks,
		RawProfile:     rawProfile,
	}

	result.Report = a.buildReport(ctx, &result)
	return result
}

func score(m CreatorMetrics) (ScoreBreakdown, []string, []string) {
	breakdown := ScoreBreakdown{
		Followers:  clamp(m.Followers/1_000_000, 0, 0.4),
		Engagement: clamp(m.EngagementRate/100*10, 0, 0.3),
		Frequency:  clamp(m.Posts30d/30, 0, 0.15),
		BrandFit:   clamp(m.BrandFit*0.15, 0, 0.15),
	}

	var tags, risks []string
	if m.Reports90d >= 3 {
		tags = append(tags, "high_reports")
		risks = append(risks, "high_reports")
	}
	if m.EngagementRate/100 < 0.002 {
		tags = append(tags, "low_engagement")
		risks = append(risks, "low_engagement")
	}
	if m.Posts30d < 4 {
		tags = append(tags, "low_activity")
		risks = append(risks, "low_activity")
	}
	return breakdown, tags, risks
}

func gradeFor(score float64) Grade {
	switch {
	case score >= 85:
		return GradeS
	case score >= 70:
		return GradeA
	case score >= 55:
		return GradeB
	default:
		return GradeC
	}
}

func decisionFor(score float64, tags []string) Decision {
	hasTag := func(t string) bool {
		for _, tag := range tags {
			if tag == t {
				return true
			}
		}
		return false
	}
	if hasTag("high_reports") || score < 50 {
		return DecisionReject
	}
	if hasTag("low_activity") && score < 70 {
		return DecisionHold
	}
	return DecisionAccept
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// scrapeProfile asks the Supadata MCP tool to scrape the profile URL and
// regex-extracts follower count and engagement rate from the page text.
func (a *CreatorAgent) scrapeProfile(ctx context.Context, profileURL string) (*CreatorMetrics, map[string]any) {
	out := a.MCP.Enrich(ctx, true, &mcp.Spec{Supadata: &mcp.SupadataSpec{ScrapeURLs: []string{profileURL}}})
	if out.Supadata == nil || len(out.Supadata.Scrapes) == 0 {
		return nil, map[string]any{}
	}

	content := out.Supadata.Scrapes[0].Content
	metrics := &CreatorMetrics{}
	if m := followerPattern.FindStringSubmatch(content); len(m) == 3 {
		metrics.Followers = parseFollowerCount(m[1], m[2])
	}
	if m := engagementPattern.FindStringSubmatch(content); len(m) == 2 {
		var v float64
		fmt.Sscanf(m[1], "%f", &v)
		metrics.EngagementRate = v
	}
	return metrics, map[string]any{"scraped_content": content, "url": profileURL}
}

func parseFollowerCount(numeric, suffix string) float64 {
	clean := strings.ReplaceAll(numeric, ",", "")
	var v float64
	fmt.Sscanf(clean, "%f", &v)
	switch strings.ToLower(suffix) {
	case "k":
		v *= 1_000
	case "m":
		v *= 1_000_000
	}
	return v
}

// buildReport enhances the evaluation with parallel RAG lookups (similar
// creators, category insights, risk analysis, market context) then
// synthesizes a final report via the Generation Engine, falling back to a
// deterministic template if the model is unavailable.
func (a *CreatorAgent) buildReport(ctx context.Context, result *EvaluationResult) string {
	enhancement := a.runRAGEnhancement(ctx, result)

	if a.Engine == nil {
		return deterministicReport(*result, enhancement)
	}

	prompt := fmt.Sprintf(
		"Write a concise Korean-language creator evaluation report.\nPlatform: %s\nHandle: %s\nScore: %.1f\nGrade: %s\nDecision: %s\nTags: %v\nSimilar creators: %s\nCategory insight: %s\nRisk analysis: %s\nMarket context: %s",
		result.Platform, result.Handle, result.Score, result.Grade, result.Decision, result.Tags,
		enhancement.SimilarCreators, enhancement.CategoryInsight, enhancement.RiskAnalysis, enhancement.MarketContext,
	)
	resp := a.Engine.Generate(ctx, generation.Request{
		Messages: []generation.Message{{Role: "user", Content: prompt}},
		Hints:    generation.Hints{Latency: "fast"},
	})
	if strings.TrimSpace(resp.Content) == "" {
		return deterministicReport(*result, enhancement)
	}
	return resp.Content
}

func (a *CreatorAgent) runRAGEnhancement(ctx context.Context, result *EvaluationResult) RAGEnhancement {
	if a.RAG == nil {
		return RAGEnhancement{}
	}

	type lookup struct {
		field  *string
		prompt string
	}
	var enhancement RAGEnhancement
	lookups := []lookup{
		{&enhancement.SimilarCreators, fmt.Sprintf("Find creators similar to %s on %s.", result.Handle, result.Platform)},
		{&enhancement.CategoryInsight, fmt.Sprintf("Summarize category insights relevant to %s.", result.Handle)},
		{&enhancement.RiskAnalysis, fmt.Sprintf("Summarize risk factors for tags %v.", result.Tags)},
		{&enhancement.MarketContext, fmt.Sprintf("Summarize current market context for platform %s.", result.Platform)},
	}

	var wg sync.WaitGroup
	for i := range lookups {
		wg.Add(1)
		go func(l *lookup) {
			defer wg.Done()
			text, err := a.RAG.GenerateText(ctx, l.prompt)
			if err == nil {
				*l.field = text
			}
		}(&lookups[i])
	}
	wg.Wait()
	result.RAGEnhanced = true
	return enhancement
}

func deterministicReport(result EvaluationResult, enhancement RAGEnhancement) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## %s (%s) 평가 결과\n\n", result.Handle, result.Platform)
	fmt.Fprintf(&b, "- 점수: %.1f\n- 등급: %s\n- 결정: %s\n", result.Score, result.Grade, result.Decision)
	if len(result.Tags) > 0 {
		fmt.Fprintf(&b, "- 태그: %s\n", strings.Join(result.Tags, ", "))
	}
	if enhancement.SimilarCreators != "" {
		fmt.Fprintf(&b, "\n### 유사 크리에이터\n%s\n", enhancement.SimilarCreators)
	}
	if enhancement.RiskAnalysis != "" {
		fmt.Fprintf(&b, "\n### 리스크 분석\n%s\n", enhancement.RiskAnalysis)
	}
	return b.String()
}
