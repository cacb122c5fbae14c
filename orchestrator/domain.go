package orchestrator

import (
	"context"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/agents"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/rag"
)

// qualityGateWeak reports whether a RAG result is weak enough to trigger a
// replan: no docs retrieved, an empty answer, an
// uncertainty marker, or a short answer with >=2 retrieved docs.
func qualityGateWeak(result rag.Result) bool {
	if len(result.RetrievedDocs) == 0 {
		return true
	}
	if result.Answer == "" {
		return true
	}
	if containsUncertaintyMarker(result.Answer) {
		return true
	}
	return len(result.Answer) < 120 && len(result.RetrievedDocs) >= 2
}

func ragHints(state *OrchestratorState) rag.Hints {
	h := rag.Hints{}
	if state.Plan != nil {
		h.Complexity = state.Plan.Complexity
		h.CostPreference = state.Plan.CostPreference
	}
	return h
}

// runRAGWithQualityGate runs the RAG pipeline and, on a weak result,
// replans and re-enters within the loop budget.
func (g *Graph) runRAGWithQualityGate(ctx context.Context, state *OrchestratorState, req Request) {
	if g.RAG == nil {
		state.appendAudit("rag_processing", map[string]any{"skipped": true})
		return
	}

	for {
		result := g.RAG.Run(ctx, rag.Request{
			Query:       lastUserMessage(state),
			Hints:       ragHints(state),
			UserProfile: req.Context,
		})
		state.RAGResult = &result
		state.RetrievedDocuments = result.RetrievedDocs
		state.RAGContext = result.Context
		state.appendAudit("rag_processing", map[string]any{"cached": result.Cached, "docs": len(result.RetrievedDocs)})

		// A semantic-cache hit carries no retrieved documents, so it is
		// returned as is rather than judged by the gate's document checks.
		if result.Cached || !qualityGateWeak(result) {
			return
		}
		if state.LoopCount >= state.MaxLoops {
			state.FinalResponse = "죄송합니다. 제공된 정보만으로는 충분히 답변드리기 어렵습니다."
			return
		}
		g.replanRequest(ctx, state, "rag_weak")
		if !(state.Plan != nil && state.Plan.NeedsRAG) {
			return
		}
	}
}

func (g *Graph) runCompetency(ctx context.Context, state *OrchestratorState, req Request) {
	samples, _ := req.Context["competency_samples"].([]agents.CompetencySample)
	result := g.Competency.Evaluate(samples)
	state.CompetencyData = &result
	state.appendAudit("competency", map[string]any{"overall": result.Overall})
}

func (g *Graph) runRecommendation(ctx context.Context, state *OrchestratorState) {
	result := g.Recommendation.Run(agents.RecommendationRequest{})
	state.RecommendationData = &result
	state.appendAudit("recommendation", map[string]any{"actions": len(result.NextActions)})
}

func (g *Graph) runMission(ctx context.Context, state *OrchestratorState, req Request) {
	profile, hasProfile := req.Context["creator_profile"].(agents.CreatorProfile)
	creatorID, _ := req.Context["creator_id"].(string)

	// When the caller hands us raw creator signals instead of a graded
	// profile, the onboarding agent evaluates them first so mission
	// scoring sees a grade and risk tags.
	if !hasProfile && g.Creator != nil {
		if creq, ok := creatorRequestFromContext(req.Context); ok {
			eval := g.Creator.Evaluate(ctx, creq)
			state.CreatorEvaluation = &eval
			profile = profileFromEvaluation(creq, eval)
			state.appendAudit("creator", map[string]any{
				"decision": string(eval.Decision),
				"grade":    string(eval.Grade),
				"score":    eval.Score,
			})
		}
	}
	topK := 5
	if n, ok := req.Context["top_k"].(int); ok && n > 0 {
		topK = n
	}

	var requirements []agents.MissionRequirement
	if g.MissionAgent != nil {
		requirements = g.MissionAgent()
	} else if reqs, ok := req.Context["mission_requirements"].([]agents.MissionRequirement); ok {
		requirements = reqs
	}

	recs := agents.RecommendMissions(creatorID, profile, requirements, topK)
	state.MissionRecommendations = recs
	state.appendAudit("mission", map[string]any{"count": len(recs)})
}

func (g *Graph) runSearch(ctx context.Context, state *OrchestratorState, req Request) {
	if g.Search == nil {
		state.appendAudit("search", map[string]any{"skipped": true})
		return
	}
	searchReq := agents.SearchRequest{Query: lastUserMessage(state), TopK: 10}
	if state.ToolEnrichmentResult != nil && state.ToolEnrichmentResult.Output.ExternalSnippets != nil {
		searchReq.UseWebTool = true
	}
	result, err := g.Search.Run(ctx, searchReq)
	if err != nil {
		state.appendError("orchestrator.Search", err)
		return
	}
	state.SearchResults = &result
	state.appendAudit("search", map[string]any{"count": len(result.Documents)})
	g.runExternalIntegration(ctx, state, req)
}

func (g *Graph) runExternalIntegration(ctx context.Context, state *OrchestratorState, req Request) {
	if g.Integration == nil {
		return
	}
	creatorID, _ := req.Context["creator_id"].(string)
	decision := agents.DecisionHold
	result := g.Integration.Run(ctx, agents.IntegrationRequest{CreatorID: creatorID, Decision: decision})
	state.ExternalAPIResults = &result
	state.appendAudit("external_integration", map[string]any{"delivered": result.Delivered})
}

func (g *Graph) runAnalytics(ctx context.Context, state *OrchestratorState, req Request) {
	if g.Analytics == nil {
		state.appendAudit("analytics", map[string]any{"skipped": true})
		return
	}
	userID, _ := req.Context["user_id"].(string)
	reportType, _ := req.Context["report_type"].(agents.ReportType)
	if reportType == "" {
		reportType = agents.ReportLearningProgress
	}
	result, err := g.Analytics.Run(userID, reportType)
	if err != nil {
		state.appendError("orchestrator.Analytics", err)
		return
	}
	state.AnalyticsResults = &result
	state.appendAudit("analytics", map[string]any{"report_type": result.ReportType, "grade": result.Grade})
}

func (g *Graph) runDataCollection(ctx context.Context, state *OrchestratorState, req Request) {
	if g.DataCollection == nil {
		state.appendAudit("data_collection", map[string]any{"skipped": true})
		return
	}
	fields := map[string]any{"workflow_type": string(state.WorkflowType)}
	if state.ToolEnrichmentResult != nil {
		fields["tool_enrichment_ran"] = state.ToolEnrichmentResult.Ran
	}
	result := g.DataCollection.Run(ctx, agents.DataCollectionRequest{SessionID: state.ThreadID, Fields: fields})
	state.CollectedData = &result
	state.appendAudit("data_collection", map[string]any{"recorded": result.Recorded})
}

// runGeneral is the "general" workflow's llm_manager node: a direct
// generation-engine call over the conversation history.
func (g *Graph) runGeneral(ctx context.Context, state *OrchestratorState, req Request) {
	if g.Engine == nil {
		state.appendAudit("llm_manager", map[string]any{"skipped": true})
		return
	}
	resp := g.Engine.Generate(ctx, generation.Request{
		Messages: []generation.Message{{Role: "user", Content: lastUserMessage(state)}},
		Hints:    generation.Hints{Latency: "fast"},
	})
	state.FinalResponse = resp.Content
	state.SelectedLLMModel = resp.ModelName
	state.appendAudit("llm_manager", map[string]any{"model": resp.ModelName})
}

// creatorRequestFromContext extracts a creator onboarding request from the
// request context: either a pre-built agents.CreatorRequest under
// "creator_request", or platform/handle strings plus optional metrics.
func creatorRequestFromContext(rc map[string]any) (agents.CreatorRequest, bool) {
	if creq, ok := rc["creator_request"].(agents.CreatorRequest); ok {
		return creq, true
	}
	platform, _ := rc["creator_platform"].(string)
	handle, _ := rc["creator_handle"].(string)
	if platform == "" || handle == "" {
		return agents.CreatorRequest{}, false
	}
	creq := agents.CreatorRequest{Platform: platform, Handle: handle}
	if url, ok := rc["creator_profile_url"].(string); ok {
		creq.ProfileURL = url
	}
	if m, ok := rc["creator_metrics"].(*agents.CreatorMetrics); ok {
		creq.Metrics = m
	}
	return creq, true
}

// profileFromEvaluation turns a fresh onboarding evaluation into the
// graded profile the mission rule engine consumes. Engagement rate is
// converted from the metrics' percent convention to a fraction.
func profileFromEvaluation(creq agents.CreatorRequest, eval agents.EvaluationResult) agents.CreatorProfile {
	p := agents.CreatorProfile{
		Platform: eval.Platform,
		Grade:    eval.Grade,
		Tags:     eval.Tags,
	}
	if creq.Metrics != nil {
		p.Followers = creq.Metrics.Followers
		p.EngagementRate = creq.Metrics.EngagementRate / 100
		p.Posts30d = creq.Metrics.Posts30d
		p.Reports90d = creq.Metrics.Reports90d
	}
	return p
}
