package orchestrator

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
)

// componentOutputs collects every non-empty domain output this run
// produced, in a stable order, for both the synthesis prompt and the
// deterministic-concatenation fallback.
func componentOutputs(state *OrchestratorState) map[string]any {
	out := map[string]any{}
	if state.RAGResult != nil && state.RAGResult.Answer != "" {
		out["rag_answer"] = state.RAGResult.Answer
	}
	if state.CompetencyData != nil {
		out["competency"] = state.CompetencyData
	}
	if state.RecommendationData != nil {
		out["recommendation"] = state.RecommendationData
	}
	if len(state.MissionRecommendations) > 0 {
		out["mission_recommendations"] = state.MissionRecommendations
	}
	if state.SearchResults != nil {
		out["search_results"] = state.SearchResults
	}
	if state.AnalyticsResults != nil {
		out["analytics"] = state.AnalyticsResults
	}
	if state.CollectedData != nil {
		out["data_collection"] = state.CollectedData
	}
	return out
}

// finalSynthesis produces the user-visible answer: if only a
// RAG answer exists and nothing else was produced, return it verbatim;
// otherwise invoke the model with a structured payload, falling back to a
// deterministic concatenation of non-empty outputs on LLM failure.
func (g *Graph) finalSynthesis(ctx context.Context, state *OrchestratorState) {
	defer state.appendAudit("final_synthesis", map[string]any{"workflow_type": string(state.WorkflowType)})

	if state.FinalResponse != "" {
		return // general/llm_manager or the RAG-exhausted "insufficient information" message already set it
	}

	outputs := componentOutputs(state)

	if len(outputs) == 1 {
		if answer, ok := outputs["rag_answer"].(string); ok {
			state.FinalResponse = answer
			return
		}
	}

	if g.Engine == nil || len(outputs) == 0 {
		state.FinalResponse = deterministicConcat(outputs)
		return
	}

	routingJSON, _ := json.Marshal(state.Routing)
	planJSON, _ := json.Marshal(state.Plan)
	outputsJSON, _ := json.Marshal(outputs)

	prompt, err := synthesisPromptTemplate.Render(map[string]any{
		"Routing": string(routingJSON),
		"Plan":    string(planJSON),
		"Outputs": string(outputsJSON),
	})
	if err != nil {
		state.FinalResponse = deterministicConcat(outputs)
		return
	}

	resp := g.Engine.Generate(ctx, generation.Request{
		Messages: []generation.Message{{Role: "user", Content: prompt}},
		Hints:    generation.Hints{Complexity: "deep"},
	})
	if strings.TrimSpace(resp.Content) == "" {
		state.FinalResponse = deterministicConcat(outputs)
		return
	}
	state.FinalResponse = resp.Content
}

func deterministicConcat(outputs map[string]any) string {
	if len(outputs) == 0 {
		return "죄송합니다. 처리 결과를 생성하지 못했습니다."
	}
	keys := make([]string, 0, len(outputs))
	for k := range outputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, key := range keys {
		v := outputs[key]
		if s, ok := v.(string); ok {
			b.WriteString(s)
			b.WriteString("\n\n")
			continue
		}
		encoded, err := json.Marshal(v)
		if err != nil {
			continue
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.Write(encoded)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}
