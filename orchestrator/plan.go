package orchestrator

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
)

type plannerJSON struct {
	WorkflowType   string `json:"workflow_type"`
	NeedsRAG       bool   `json:"needs_rag"`
	NeedsTools     bool   `json:"needs_tools"`
	Complexity     string `json:"complexity"`
	CostPreference string `json:"cost_preference"`
	Notes          string `json:"notes"`
}

// planRequest calls the deep model at temperature 0 with a JSON-only
// schema instruction. On parse failure it emits a minimal safe plan that
// preserves the current workflow_type.
func (g *Graph) planRequest(ctx context.Context, state *OrchestratorState, req Request) {
	defer func() {
		state.appendAudit("plan_request", map[string]any{"notes": state.Plan.Notes})
	}()

	fallback := &Plan{
		WorkflowType: state.WorkflowType,
		NeedsTools:   state.WorkflowType == WorkflowMission || state.WorkflowType == WorkflowAnalytics || state.WorkflowType == WorkflowDataCollection,
		NeedsRAG:     state.WorkflowType == WorkflowRAG,
		Complexity:   "medium",
		Notes:        "planner_parse_failed",
	}

	if g.Engine == nil {
		state.Plan = fallback
		return
	}

	prompt, err := plannerPromptTemplate.Render(map[string]any{
		"Intent":  state.Routing.Intent,
		"Message": req.Message,
	})
	if err != nil {
		state.appendError("orchestrator.PlanRequest", err)
		state.Plan = fallback
		return
	}

	resp := g.Engine.Generate(ctx, generation.Request{
		Messages:    []generation.Message{{Role: "user", Content: prompt}},
		Temperature: 0,
		Hints:       generation.Hints{Complexity: "deep"},
	})

	raw := strings.TrimSpace(resp.Content)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var parsed plannerJSON
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err != nil {
		state.Plan = fallback
		return
	}

	workflow := WorkflowType(parsed.WorkflowType)
	if workflow == "" {
		workflow = state.WorkflowType
	}
	state.Plan = &Plan{
		WorkflowType:   workflow,
		NeedsRAG:       parsed.NeedsRAG,
		NeedsTools:     parsed.NeedsTools,
		Complexity:     parsed.Complexity,
		CostPreference: parsed.CostPreference,
		Notes:          parsed.Notes,
	}
}
