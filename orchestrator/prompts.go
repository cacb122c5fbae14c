package orchestrator

import (
	"bytes"
	"strings"
	"text/template"
)

// PromptTemplate is the orchestrator's own small text/template-backed
// prompt type, mirroring rag.PromptTemplate: named, versioned, and
// swappable without touching node code.
type PromptTemplate struct {
	Name    string
	Version string
	tpl     *template.Template
}

func mustPromptTemplate(name, version, body string) *PromptTemplate {
	tpl, err := template.New(name).Parse(body)
	if err != nil {
		panic(err)
	}
	return &PromptTemplate{Name: name, Version: version, tpl: tpl}
}

// Render substitutes vars into the template body.
func (p *PromptTemplate) Render(vars map[string]any) (string, error) {
	var buf bytes.Buffer
	if err := p.tpl.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var routerPromptTemplate = mustPromptTemplate("router", "v1", strings.TrimSpace(`
Classify the user's intent into exactly one label: general, rag,
competency, recommendation, mission, search, analytics, data_collection.
Reply with the label only, nothing else.

Message: {{.Message}}
`))

var plannerPromptTemplate = mustPromptTemplate("planner", "v1", strings.TrimSpace(`
You are a deliberative planner. Given the routed intent and the user
message, emit a JSON object with exactly these fields:
{"workflow_type": "...", "needs_rag": bool, "needs_tools": bool,
 "complexity": "simple|medium|high", "cost_preference":
 "budget|balanced|performance|speed", "notes": "..."}
Reply with JSON only, no commentary.

Intent: {{.Intent}}
Message: {{.Message}}
`))

var replannerPromptTemplate = mustPromptTemplate("replanner", "v1", strings.TrimSpace(`
The previous plan failed to complete. Given the prior plan, the tool
execution outcome, and the RAG status, emit an updated plan as JSON with
the same fields as before. Reply with JSON only.

Prior plan: {{.PriorPlan}}
Tool outcome: {{.ToolOutcome}}
RAG status: {{.RAGStatus}}
`))

var synthesisPromptTemplate = mustPromptTemplate("final_synthesis", "v1", strings.TrimSpace(`
당신은 크리에이터 온보딩 플랫폼의 통합 어시스턴트입니다. 아래 라우팅, 계획,
각 컴포넌트의 출력 결과를 바탕으로 사용자에게 보여줄 하나의 한국어 답변을
구조적으로 작성하세요.

Routing: {{.Routing}}
Plan: {{.Plan}}
Component outputs: {{.Outputs}}
`))

// uncertaintyMarkers is the curated Korean+English list the RAG quality
// gate scans for, kept as a literal configurable list so the test suite
// design note rather than a regex heuristic.
var uncertaintyMarkers = []string{
	"알 수 없습니다",
	"잘 모르겠습니다",
	"정보가 부족합니다",
	"i don't know",
	"i'm not sure",
	"insufficient information",
	"cannot determine",
}

func containsUncertaintyMarker(answer string) bool {
	lower := strings.ToLower(answer)
	for _, m := range uncertaintyMarkers {
		if strings.Contains(lower, strings.ToLower(m)) || strings.Contains(answer, m) {
			return true
		}
	}
	return false
}

// complexityKeywords trips the planner's "complexity keyword present"
// disjunct.
var complexityKeywords = []string{
	"분석", "비교", "전략", "최적화", "다단계",
	"analyze", "compare", "strategy", "optimize", "multi-step",
}

func containsComplexityKeyword(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range complexityKeywords {
		if strings.Contains(lower, strings.ToLower(k)) || strings.Contains(message, k) {
			return true
		}
	}
	return false
}

// deepAgentsKeywords trips the routing node's deep-agents gate alongside
// the length/sentence-count heuristic.
var deepAgentsKeywords = []string{
	"단계별로", "심층 분석", "종합적으로",
	"step by step", "deep dive", "comprehensive analysis",
}

func containsDeepAgentsKeyword(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range deepAgentsKeywords {
		if strings.Contains(lower, strings.ToLower(k)) || strings.Contains(message, k) {
			return true
		}
	}
	return false
}
