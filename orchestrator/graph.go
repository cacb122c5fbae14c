package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/agents"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/checkpoint"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/mcp"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/rag"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/resilience"
)

// Graph wires every collaborator the orchestrator's fixed node sequence
// needs and runs one request end-to-end. It holds no per-session state of
// its own; OrchestratorState is the only thing that varies across runs.
type Graph struct {
	Settings   *core.Settings
	Engine     *generation.Engine
	MCP        *mcp.Service
	RAG        *rag.Pipeline
	Checkpoint checkpoint.Store
	Logger     core.Logger
	Metrics    core.MetricsSink
	Breakers   *resilience.Manager

	Creator        *agents.CreatorAgent
	MissionAgent   func() []agents.MissionRequirement
	Analytics      *agents.AnalyticsAgent
	Competency     agents.CompetencyAgent
	Search         *agents.SearchAgent
	Recommendation agents.RecommendationAgent
	Integration    *agents.IntegrationAgent
	DataCollection *agents.DataCollectionAgent
}

// NewGraph builds a Graph from already-constructed collaborators. Any nil
// field degrades gracefully: node implementations check before using a
// collaborator and record a degraded-mode result instead of panicking.
func NewGraph(settings *core.Settings, engine *generation.Engine, mcpSvc *mcp.Service, ragPipeline *rag.Pipeline, store checkpoint.Store, logger core.Logger) *Graph {
	if logger == nil {
		logger = core.NoOpLogger{}
	}
	return &Graph{
		Settings:   settings,
		Engine:     engine,
		MCP:        mcpSvc,
		RAG:        ragPipeline,
		Checkpoint: store,
		Logger:     logger,
	}
}

func (g *Graph) maxLoops() int {
	if g.Settings != nil && g.Settings.MaxLoops > 0 {
		return g.Settings.MaxLoops
	}
	return 2
}

// Run executes one full orchestrator turn for req: route, plan, tool
// enrichment, the workflow-specific branch, and final synthesis, then
// persists the resulting state under its thread id.
func (g *Graph) Run(ctx context.Context, req Request) Response {
	threadID := req.SessionID
	if threadID == "" {
		threadID = uuid.NewString()
	}

	state := &OrchestratorState{
		ThreadID:           threadID,
		MaxLoops:           g.maxLoops(),
		PerformanceMetrics: map[string]float64{},
	}
	state.Messages = append(state.Messages, Message{Role: "user", Content: req.Message})

	g.runTurn(ctx, state, req)
	return g.finish(ctx, state)
}

// Resume appends newMessage to the session's last checkpointed state and
// re-invokes the graph from routing onward.
func (g *Graph) Resume(ctx context.Context, sessionID, newMessage string) Response {
	state := &OrchestratorState{ThreadID: sessionID, MaxLoops: g.maxLoops(), PerformanceMetrics: map[string]float64{}}
	if g.Checkpoint != nil {
		found, err := g.Checkpoint.Get(ctx, sessionID, state)
		if err != nil || !found {
			state = &OrchestratorState{ThreadID: sessionID, MaxLoops: g.maxLoops(), PerformanceMetrics: map[string]float64{}}
		}
	}
	if state.PerformanceMetrics == nil {
		state.PerformanceMetrics = map[string]float64{}
	}
	state.Messages = append(state.Messages, Message{Role: "user", Content: newMessage})
	state.LoopCount = 0

	g.runTurn(ctx, state, Request{Message: newMessage, SessionID: sessionID})

	resp := g.finish(ctx, state)
	resp.Resumed = true
	return resp
}

// runTurn executes the fixed node sequence: route, optional plan, tool
// enrichment, workflow dispatch, final synthesis.
func (g *Graph) runTurn(ctx context.Context, state *OrchestratorState, req Request) {
	total := time.Now()

	g.routeRequest(ctx, state, req)
	if g.shouldPlan(state, req) {
		g.planRequest(ctx, state, req)
	}

	if state.Plan != nil && state.Plan.WorkflowType != "" {
		state.WorkflowType = state.Plan.WorkflowType
	}
	if state.WorkflowType == "" {
		state.WorkflowType = WorkflowGeneral
	}

	g.toolEnrichment(ctx, state, req)

	g.dispatch(ctx, state, req)

	g.finalSynthesis(ctx, state)

	state.PerformanceMetrics["total_ms"] = float64(time.Since(total).Milliseconds())
}

// dispatch runs the workflow-specific branch and its bounded
// replan/re-entry loops.
func (g *Graph) dispatch(ctx context.Context, state *OrchestratorState, req Request) {
	if g.tripsDeepAgentsGate(state, req) {
		state.WorkflowType = WorkflowDeepAgents
		g.runDeepAgents(ctx, state, req)
		return
	}

	needsTools := state.Plan != nil && state.Plan.NeedsTools
	toolsFailed := state.ToolEnrichmentResult != nil && state.ToolEnrichmentResult.Ran && !toolPolicyAnyOK(state.ToolEnrichmentResult.Output)
	if needsTools && toolsFailed && state.LoopCount < state.MaxLoops {
		g.replanRequest(ctx, state, "tools_failed")
	}

	switch state.WorkflowType {
	case WorkflowRAG:
		g.runRAGWithQualityGate(ctx, state, req)
	case WorkflowCompetency:
		g.runCompetency(ctx, state, req)
	case WorkflowRecommendation:
		g.runRecommendation(ctx, state)
	case WorkflowMission:
		g.runMission(ctx, state, req)
	case WorkflowSearch:
		g.runSearch(ctx, state, req)
		if state.Plan != nil && state.Plan.NeedsRAG && state.RAGResult == nil && state.LoopCount < state.MaxLoops {
			g.runRAGWithQualityGate(ctx, state, req)
		}
	case WorkflowAnalytics:
		g.runAnalytics(ctx, state, req)
	case WorkflowDataCollection:
		g.runDataCollection(ctx, state, req)
	default:
		g.runGeneral(ctx, state, req)
	}
}

// finish persists state and builds the external response envelope,
// appending a closing audit record so every run terminates with one.
func (g *Graph) finish(ctx context.Context, state *OrchestratorState) Response {
	state.Messages = append(state.Messages, Message{Role: "assistant", Content: state.FinalResponse})
	state.appendAudit("end", map[string]any{})
	g.recordMetrics(state)

	saved := false
	if g.Checkpoint != nil {
		if err := g.Checkpoint.Put(ctx, state.ThreadID, state); err == nil {
			saved = true
		} else {
			g.Logger.Warn("orchestrator: checkpoint write failed", map[string]interface{}{"error": err.Error(), "thread_id": state.ThreadID})
		}
	}

	return Response{
		Success:                true,
		Response:               state.FinalResponse,
		WorkflowType:           state.WorkflowType,
		PerformanceMetrics:     state.PerformanceMetrics,
		AuditTrail:             state.AuditTrail,
		Errors:                 state.Errors,
		ThreadID:               state.ThreadID,
		StateSaved:             saved,
		MissionRecommendations: state.MissionRecommendations,
	}
}

// recordMetrics exports one run's durations, error count, domain metrics,
// and current breaker states to the configured sink.
func (g *Graph) recordMetrics(state *OrchestratorState) {
	if g.Metrics == nil {
		return
	}
	wt := string(state.WorkflowType)
	for name, ms := range state.PerformanceMetrics {
		g.Metrics.Histogram("orchestrator."+name, ms, "workflow", wt)
	}
	if len(state.Errors) > 0 {
		g.Metrics.Counter("orchestrator.errors", "workflow", wt)
	}
	if state.CreatorEvaluation != nil {
		g.Metrics.Histogram("creator.score", state.CreatorEvaluation.Score)
		if state.CreatorEvaluation.Decision == agents.DecisionAccept {
			g.Metrics.Counter("creator.accepted")
		}
	}
	if state.WorkflowType == WorkflowMission {
		g.Metrics.Histogram("mission.recommendations", float64(len(state.MissionRecommendations)))
	}
	if g.Breakers != nil {
		for _, snap := range g.Breakers.Snapshot() {
			g.Metrics.Gauge("breaker.state", float64(snap.State), "breaker", snap.Name)
		}
	}
}

// ClearSession deletes every checkpoint row for sessionID.
func (g *Graph) ClearSession(ctx context.Context, sessionID string) error {
	if g.Checkpoint == nil {
		return nil
	}
	return g.Checkpoint.Delete(ctx, sessionID)
}
