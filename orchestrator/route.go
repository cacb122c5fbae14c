package orchestrator

import (
	"context"
	"strings"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
)

var intentToWorkflow = map[string]WorkflowType{
	"general":         WorkflowGeneral,
	"rag":             WorkflowRAG,
	"competency":      WorkflowCompetency,
	"recommendation":  WorkflowRecommendation,
	"mission":         WorkflowMission,
	"search":          WorkflowSearch,
	"analytics":       WorkflowAnalytics,
	"data_collection": WorkflowDataCollection,
}

// tripsDeepAgentsGate applies route_request's keyword + length +
// sentence-count heuristic for forcing the iterative deep-agents path.
func (g *Graph) tripsDeepAgentsGate(state *OrchestratorState, req Request) bool {
	msg := req.Message
	if containsDeepAgentsKeyword(msg) {
		return true
	}
	if len(msg) > 500 {
		return true
	}
	return sentenceCount(msg) > 5
}

func sentenceCount(s string) int {
	count := 0
	for _, r := range s {
		if r == '.' || r == '!' || r == '?' || r == '。' {
			count++
		}
	}
	return count
}

// shouldUseRAG is the keyword heuristic route_request falls back to for an
// ambiguous/general intent.
func shouldUseRAG(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range []string{"무엇", "어떻게", "알려줘", "what", "how", "explain", "?"} {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// routeRequest classifies intent with the fast model at temperature 0,
// runs the deep-agents gate, and maps the result to a WorkflowType.
func (g *Graph) routeRequest(ctx context.Context, state *OrchestratorState, req Request) {
	defer func() {
		state.appendAudit("route_request", map[string]any{
			"intent":     state.Routing.Intent,
			"confidence": state.Routing.Confidence,
		})
	}()

	if g.tripsDeepAgentsGate(state, req) {
		state.Routing = RoutingResult{Strategy: "deep_agents_gate", Intent: "deep_agents", Confidence: 1.0}
		state.WorkflowType = WorkflowDeepAgents
		return
	}

	if g.Engine == nil {
		state.Routing = RoutingResult{Strategy: "heuristic", Intent: "general", Confidence: 0.5}
		state.WorkflowType = WorkflowGeneral
		return
	}

	prompt, err := routerPromptTemplate.Render(map[string]any{"Message": req.Message})
	if err != nil {
		state.appendError("orchestrator.RouteRequest", err)
		state.Routing = RoutingResult{Strategy: "fallback", Intent: "general", Confidence: 0.3}
		state.WorkflowType = WorkflowGeneral
		return
	}

	resp := g.Engine.Generate(ctx, generation.Request{
		Messages:    []generation.Message{{Role: "user", Content: prompt}},
		Temperature: 0,
		Hints:       generation.Hints{Latency: "fast"},
	})

	intent := strings.ToLower(strings.TrimSpace(resp.Content))
	confidence := 0.9
	if resp.UsedFallback {
		confidence = 0.4
	}

	workflow, known := intentToWorkflow[intent]
	if !known {
		workflow = WorkflowGeneral
		confidence = 0.5
	}
	if workflow == WorkflowGeneral && shouldUseRAG(req.Message) {
		workflow = WorkflowRAG
	}

	state.Routing = RoutingResult{Strategy: "model", Intent: intent, Confidence: confidence, Raw: resp.Content}
	state.WorkflowType = workflow
}

// shouldPlan implements the planner invocation boundary: routing
// confidence < 0.65 OR workflow in {general, rag} OR message length > 200
// OR a complexity keyword is present. Each disjunct is independently
// sufficient.
func (g *Graph) shouldPlan(state *OrchestratorState, req Request) bool {
	if state.Routing.Confidence < 0.65 {
		return true
	}
	if state.WorkflowType == WorkflowGeneral || state.WorkflowType == WorkflowRAG {
		return true
	}
	if len(req.Message) > 200 {
		return true
	}
	return containsComplexityKeyword(req.Message)
}
