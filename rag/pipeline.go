package rag

import (
	"context"
	"strings"
	"time"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"
)

// Pipeline wires the Retrieval Engine and Generation Engine into the
// fixed ten-stage RAG contract.
type Pipeline struct {
	Hybrid   *retrieval.HybridSearch
	Reranker retrieval.CrossEncoderReranker
	Cache    *retrieval.SemanticCache
	Engine   *generation.Engine
	Config   Config
	Logger   core.Logger
}

// NewPipeline builds a Pipeline with the given collaborators and config.
func NewPipeline(hybrid *retrieval.HybridSearch, reranker retrieval.CrossEncoderReranker, cache *retrieval.SemanticCache, engine *generation.Engine, cfg Config, logger core.Logger) *Pipeline {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Pipeline{Hybrid: hybrid, Reranker: reranker, Cache: cache, Engine: engine, Config: cfg, Logger: logger}
}

// RouteHints maps the planner's complexity/cost-preference/task-type
// signals to the generation engine's slot-selection hints — the
// "LLMManager" routing step the RAG generation stage calls through.
func RouteHints(h Hints) generation.Hints {
	out := generation.Hints{Task: h.TaskType}
	switch h.Complexity {
	case "high":
		out.Complexity = "deep"
	}
	switch h.CostPreference {
	case "speed", "budget":
		out.Latency = "fast"
	}
	return out
}

// Run executes the pipeline's ten fixed stages for one query.
func (p *Pipeline) Run(ctx context.Context, req Request) Result {
	started := time.Now()

	if p.Cache != nil {
		if entry, ok := p.Cache.Get(ctx, req.Query); ok {
			return Result{Answer: entry.Response, Cached: true, Duration: time.Since(started)}
		}
	}

	expanded := p.expandQueries(ctx, req.Query)

	var docs []retrieval.RetrievedDocument
	if p.Hybrid != nil {
		merged, err := p.Hybrid.MultiQuery(ctx, expanded, p.Config.TopK*3, req.Namespace, req.Filter)
		if err != nil {
			p.Logger.Warn("rag: hybrid retrieval failed", map[string]interface{}{"error": err.Error()})
		}
		docs = merged
	}

	reranked, err := retrieval.Rerank(ctx, p.Reranker, req.Query, expanded, docs, p.Config.TopK, p.Config.RerankMinScore)
	if err != nil {
		p.Logger.Warn("rag: rerank failed", map[string]interface{}{"error": err.Error()})
		reranked = docs
	}

	builtContext := BuildContext(req, reranked, p.Config)
	optimized := OptimizePrompt(builtContext, 0)

	answer := p.generate(ctx, req, optimized)

	hallucinated := false
	if p.Config.HallucinationCheck && answer != "" && len(reranked) > 0 {
		hallucinated = p.checkHallucination(ctx, answer, reranked)
		if hallucinated {
			answer += "\n\n⚠️ 일부 내용은 제공된 자료로 완전히 검증되지 않았을 수 있습니다."
		}
	}

	if len(answer) >= p.Config.RefineMinChars {
		answer = p.refine(ctx, answer)
	}

	result := Result{
		Answer:               answer,
		ExpandedQueries:      expanded,
		RetrievedDocs:        reranked,
		Context:              optimized,
		HallucinationWarning: hallucinated,
		Duration:             time.Since(started),
	}

	if p.Cache != nil && answer != "" {
		p.Cache.Set(ctx, req.Query, answer, map[string]any{"doc_count": len(reranked)})
	}

	return result
}

func (p *Pipeline) expandQueries(ctx context.Context, query string) []string {
	out := []string{query}
	if p.Engine == nil || p.Config.ExpansionCount <= 1 {
		return out
	}

	prompt, err := queryExpansionTemplate.Render(map[string]any{"Count": p.Config.ExpansionCount - 1, "Query": query})
	if err != nil {
		return out
	}
	raw, err := p.Engine.GenerateText(ctx, prompt)
	if err != nil || raw == "" {
		return out
	}

	seen := map[string]bool{strings.ToLower(strings.TrimSpace(query)): true}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key := strings.ToLower(line)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, line)
		if len(out) >= p.Config.ExpansionCount {
			break
		}
	}
	return out
}

func (p *Pipeline) generate(ctx context.Context, req Request, context string) string {
	if p.Engine == nil {
		return ""
	}
	resp := p.Engine.Generate(ctx, generation.Request{
		Messages: []generation.Message{
			{Role: "system", Content: "You are a helpful creator-onboarding assistant. Answer using only the provided context."},
			{Role: "user", Content: context},
		},
		Hints: RouteHints(req.Hints),
	})
	return resp.Content
}

func (p *Pipeline) checkHallucination(ctx context.Context, answer string, docs []retrieval.RetrievedDocument) bool {
	top := docs
	if len(top) > 3 {
		top = top[:3]
	}
	var contextDocs strings.Builder
	for _, d := range top {
		contextDocs.WriteString(d.Content)
		contextDocs.WriteString("\n\n")
	}
	prompt, err := hallucinationCheckTemplate.Render(map[string]any{"Claim": answer, "Context": contextDocs.String()})
	if err != nil {
		return false
	}
	verdict, err := p.Engine.GenerateText(ctx, prompt)
	if err != nil {
		return false
	}
	verdict = strings.ToUpper(strings.TrimSpace(verdict))
	return strings.HasPrefix(verdict, "NO")
}

func (p *Pipeline) refine(ctx context.Context, answer string) string {
	prompt, err := refinementTemplate.Render(map[string]any{"Answer": answer})
	if err != nil {
		return answer
	}
	refined, err := p.Engine.GenerateText(ctx, prompt)
	if err != nil || strings.TrimSpace(refined) == "" {
		return answer
	}
	return refined
}
