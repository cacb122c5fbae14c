package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
)

// replanRequest calls the deep model with the prior plan, tool state, and
// RAG status to produce an updated plan, then applies the recovery
// policy: force needs_tools=false/needs_rag=true when
// tools are unavailable; force needs_rag=true for a "search" workflow; and
// clear any prior RAG result whenever needs_rag becomes true so the RAG
// stage re-enters instead of returning a stale cached answer.
func (g *Graph) replanRequest(ctx context.Context, state *OrchestratorState, reason string) {
	if state.LoopCount >= state.MaxLoops {
		state.appendAudit("replan_request", map[string]any{"ran": false, "reason": "loop_budget_exceeded"})
		return
	}
	state.LoopCount++

	prior := "{}"
	if state.Plan != nil {
		if b, err := json.Marshal(state.Plan); err == nil {
			prior = string(b)
		}
	}
	toolOutcome := "unknown"
	if state.ToolEnrichmentResult != nil {
		toolOutcome = fmt.Sprintf("ran=%v reason=%s", state.ToolEnrichmentResult.Ran, state.ToolEnrichmentResult.Reason)
	}
	ragStatus := "none"
	if state.RAGResult != nil {
		ragStatus = fmt.Sprintf("cached=%v docs=%d", state.RAGResult.Cached, len(state.RAGResult.RetrievedDocs))
	}

	newPlan := Plan{WorkflowType: state.WorkflowType, Notes: "replan:" + reason}
	if state.Plan != nil {
		newPlan = *state.Plan
		newPlan.Notes = "replan:" + reason
	}

	if g.Engine != nil {
		prompt, err := replannerPromptTemplate.Render(map[string]any{
			"PriorPlan":   prior,
			"ToolOutcome": toolOutcome,
			"RAGStatus":   ragStatus,
		})
		if err == nil {
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
			if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &parsed); err == nil && parsed.WorkflowType != "" {
				newPlan = Plan{
					WorkflowType:   WorkflowType(parsed.WorkflowType),
					NeedsRAG:       parsed.NeedsRAG,
					NeedsTools:     parsed.NeedsTools,
					Complexity:     parsed.Complexity,
					CostPreference: parsed.CostPreference,
					Notes:          parsed.Notes,
				}
			}
		}
	}

	if reason == "tools_failed" {
		newPlan.NeedsTools = false
		newPlan.NeedsRAG = true
	}
	if newPlan.WorkflowType == WorkflowSearch {
		newPlan.NeedsRAG = true
	}
	if newPlan.NeedsRAG {
		state.RAGResult = nil
	}

	state.Plan = &newPlan
	state.WorkflowType = newPlan.WorkflowType
	state.ReplanResult = &ReplanAudit{Ran: true, NewPlan: newPlan, Reason: reason}
	state.appendAudit("replan_request", map[string]any{"ran": true, "reason": reason, "loop_count": state.LoopCount})
}
