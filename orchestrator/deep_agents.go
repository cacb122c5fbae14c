package orchestrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/core"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
)

// deepAgentsCriticTemplate scores a draft answer and, when it falls short
// of the quality threshold, asks for a revised draft addressing its own
// critique. The loop is bounded by max_steps/critic_rounds and stops
// early at quality_threshold.
var deepAgentsCriticTemplate = mustPromptTemplate("deep_agents_critic", "v1", strings.TrimSpace(`
Critique the following draft answer to the user's message for accuracy,
completeness, and clarity. Reply with a line "SCORE: <0-1 float>" followed
by a blank line and then either "OK" or a revised draft.

Message: {{.Message}}
Draft:
{{.Draft}}
`))

// runDeepAgents runs a bounded draft -> critique -> revise loop, stopping
// early once the critic's self-reported score meets the configured
// quality threshold or max_steps is exhausted.
func (g *Graph) runDeepAgents(ctx context.Context, state *OrchestratorState, req Request) {
	cfg := core.DeepAgentsConfig{MaxSteps: 4, CriticRounds: 1, QualityThreshold: 0.6}
	if g.Settings != nil {
		cfg = g.Settings.DeepAgents
	}

	if g.Engine == nil {
		state.appendAudit("deep_agents", map[string]any{"skipped": true})
		return
	}

	draft := g.Engine.Generate(ctx, generation.Request{
		Messages: []generation.Message{{Role: "user", Content: lastUserMessage(state)}},
		Hints:    generation.Hints{Complexity: "deep", Task: "reasoning"},
	}).Content

	steps := cfg.MaxSteps
	if steps <= 0 {
		steps = 4
	}
	rounds := cfg.CriticRounds
	if rounds <= 0 {
		rounds = 1
	}
	if rounds > steps {
		rounds = steps
	}

	for round := 0; round < rounds; round++ {
		prompt, err := deepAgentsCriticTemplate.Render(map[string]any{"Message": req.Message, "Draft": draft})
		if err != nil {
			break
		}
		critique := g.Engine.Generate(ctx, generation.Request{
			Messages: []generation.Message{{Role: "user", Content: prompt}},
			Hints:    generation.Hints{Complexity: "deep"},
		}).Content

		score, revised := parseCritique(critique)
		state.appendAudit("deep_agents_round", map[string]any{"round": round, "score": score})
		if score >= cfg.QualityThreshold || revised == "" {
			break
		}
		draft = revised
	}

	state.FinalResponse = draft
	state.appendAudit("deep_agents", map[string]any{"steps": rounds})
}

func parseCritique(critique string) (float64, string) {
	lines := strings.SplitN(strings.TrimSpace(critique), "\n", 2)
	if len(lines) == 0 {
		return 0, ""
	}
	score := 0.0
	if strings.HasPrefix(strings.ToUpper(lines[0]), "SCORE:") {
		var v float64
		if _, err := fmt.Sscanf(strings.TrimSpace(lines[0][len("SCORE:"):]), "%f", &v); err == nil {
			score = v
		}
	}
	revised := ""
	if len(lines) > 1 {
		body := strings.TrimSpace(lines[1])
		if body != "OK" && body != "" {
			revised = body
		}
	}
	return score, revised
}
