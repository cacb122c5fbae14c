package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/agents"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/checkpoint"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/mcp"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/rag"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/resilience"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"
)

// scriptedClient replays one response per call, repeating the last entry
// once exhausted, mirroring rag.scriptedClient's test convention.
type scriptedClient struct {
	responses []string
	calls     int
}

func (c *scriptedClient) Generate(ctx context.Context, modelName string, messages []generation.Message, temperature float32, maxTokens int) (string, error) {
	if c.calls >= len(c.responses) {
		return c.responses[len(c.responses)-1], nil
	}
	r := c.responses[c.calls]
	c.calls++
	return r, nil
}

func (c *scriptedClient) SupportsFunctions() bool { return false }

func (c *scriptedClient) GenerateWithFunctions(ctx context.Context, modelName string, messages []generation.Message, temperature float32, maxTokens int, functions []generation.FunctionSpec, handlers map[string]generation.FunctionHandler) (string, string, error) {
	return "", "", nil
}

func testEngine(responses ...string) *generation.Engine {
	r := generation.NewRegistry(nil)
	shared := &scriptedClient{responses: responses}
	r.Bind(generation.SlotFast, "fast-model", shared)
	r.Bind(generation.SlotDefault, "default-model", shared)
	r.Bind(generation.SlotDeep, "deep-model", shared)
	return generation.NewEngine(r, nil)
}

func seededHybrid() *retrieval.HybridSearch {
	mem := retrieval.NewMemoryBackend(func(ctx context.Context, text string) ([]float32, error) {
		return []float32{1, 0}, nil
	})
	_ = mem.Upsert(context.Background(), []retrieval.RetrievedDocument{
		{ID: "doc1", Content: "creator onboarding requires a follower count above 10000"},
		{ID: "doc2", Content: "mission matching uses engagement rate and brand fit"},
	}, "")
	kw := retrieval.NewKeywordIndex()
	kw.Upsert([]retrieval.RetrievedDocument{
		{ID: "doc1", Content: "creator onboarding requires a follower count above 10000"},
		{ID: "doc2", Content: "mission matching uses engagement rate and brand fit"},
	})
	return retrieval.NewHybridSearch(mem, kw, 0.7, 0.3)
}

// singleStageRAGConfig collapses the pipeline to one generation call (the
// "generate" stage) so orchestrator-level tests can script engine
// responses deterministically instead of also covering query expansion,
// hallucination-check, and refinement calls exercised by rag's own tests.
func singleStageRAGConfig() rag.Config {
	cfg := rag.DefaultConfig()
	cfg.ExpansionCount = 1
	cfg.HallucinationCheck = false
	cfg.RefineMinChars = 100000
	return cfg
}

// --- mission workflow wiring ---

func TestGraph_MissionWorkflowRecommendsSurvivingMission(t *testing.T) {
	engine := testEngine("mission")
	g := NewGraph(nil, engine, nil, nil, checkpoint.NewMemoryStore(), nil)

	profile := agents.CreatorProfile{
		Platform:       "instagram",
		Followers:      50000,
		EngagementRate: 0.05,
		Posts30d:       10,
		Grade:          agents.GradeA,
	}
	requirement := agents.MissionRequirement{
		MissionID:     "m1",
		MinFollowers:  10000,
		MinEngagement: 0.02,
		MinGrade:      agents.GradeB,
	}

	resp := g.Run(context.Background(), Request{
		Message: "미션 추천해줘",
		Context: map[string]any{
			"creator_id":           "creator-1",
			"creator_profile":      profile,
			"mission_requirements": []agents.MissionRequirement{requirement},
			"top_k":                5,
		},
	})

	require.True(t, resp.Success)
	require.Len(t, resp.MissionRecommendations, 1)
	assert.Equal(t, "m1", resp.MissionRecommendations[0].MissionID)
	assert.Contains(t, resp.MissionRecommendations[0].Reasons[0], "참여율")
}

func TestGraph_MissionWorkflowHardFilterRejectsLowFollowers(t *testing.T) {
	engine := testEngine("mission")
	g := NewGraph(nil, engine, nil, nil, checkpoint.NewMemoryStore(), nil)

	profile := agents.CreatorProfile{Platform: "instagram", Followers: 500, Grade: agents.GradeB}
	requirement := agents.MissionRequirement{MissionID: "m1", MinFollowers: 10000}

	resp := g.Run(context.Background(), Request{
		Message: "미션 추천해줘",
		Context: map[string]any{
			"creator_id":           "creator-1",
			"creator_profile":      profile,
			"mission_requirements": []agents.MissionRequirement{requirement},
		},
	})

	require.True(t, resp.Success)
	assert.Empty(t, resp.MissionRecommendations)
}

// --- tool failure -> replan -> RAG ---

func TestGraph_ToolFailureTriggersReplanIntoRAG(t *testing.T) {
	engine := testEngine(
		"search",
		`{"workflow_type":"search","needs_tools":true,"needs_rag":false,"complexity":"medium","notes":"plan"}`,
		`{"workflow_type":"rag","needs_tools":false,"needs_rag":true,"complexity":"medium","notes":"replan"}`,
		"충분한 정보를 바탕으로 답변드립니다. 이 응답은 120자를 넘는 충분히 긴 내용을 담고 있어 품질 게이트를 통과해야 하는 긴 텍스트입니다 계속 이어집니다 계속.",
	)

	failingBreaker := resilience.NewCircuitBreaker("web", 1, time.Hour, nil)
	failingBreaker.Failure(assert.AnError)
	svc := &mcp.Service{Web: &mcp.WebTool{Session: &nopSession{}, Policy: mcp.Policy{Breaker: failingBreaker}}}

	ragPipeline := rag.NewPipeline(seededHybrid(), nil, nil, engine, singleStageRAGConfig(), nil)

	g := NewGraph(nil, engine, svc, ragPipeline, checkpoint.NewMemoryStore(), nil)

	resp := g.Run(context.Background(), Request{Message: "경쟁사 동향을 분석해서 웹에서 찾아줘"})

	require.True(t, resp.Success)
	require.NotEmpty(t, resp.AuditTrail)

	var sawReplan bool
	for _, entry := range resp.AuditTrail {
		if entry.Step == "replan_request" {
			if ran, _ := entry.Fields["ran"].(bool); ran {
				sawReplan = true
			}
		}
	}
	assert.True(t, sawReplan, "expected a replan_request audit entry with ran=true")
	assert.Equal(t, WorkflowRAG, resp.WorkflowType)
}

// --- RAG weak answer -> replan -> exhausted budget fallback ---

func TestGraph_RAGWeakAnswerExhaustsLoopBudgetWithInsufficientInfoMessage(t *testing.T) {
	engine := testEngine(
		"rag",
		`{"workflow_type":"rag","needs_rag":true,"needs_tools":false,"complexity":"medium","notes":"plan"}`,
		"모름",
		`{"workflow_type":"rag","needs_rag":true,"needs_tools":false,"complexity":"medium","notes":"replan"}`,
		"모름",
		`{"workflow_type":"rag","needs_rag":true,"needs_tools":false,"complexity":"medium","notes":"replan"}`,
		"모름",
	)
	ragPipeline := rag.NewPipeline(seededHybrid(), nil, nil, engine, singleStageRAGConfig(), nil)
	g := NewGraph(nil, engine, nil, ragPipeline, checkpoint.NewMemoryStore(), nil)

	resp := g.Run(context.Background(), Request{Message: "온보딩 기준이 뭐야?"})

	require.True(t, resp.Success)
	assert.Equal(t, WorkflowRAG, resp.WorkflowType)
	assert.Contains(t, resp.Response, "충분히 답변드리기 어렵습니다")
}

// --- semantic cache hit on repeated RAG queries ---

func TestGraph_RepeatedRAGQueryHitsSemanticCache(t *testing.T) {
	engine := testEngine(
		"rag",
		`{"workflow_type":"rag","needs_rag":true,"needs_tools":false,"complexity":"medium","notes":"plan"}`,
		"팔로워 수가 10000명 이상이어야 온보딩이 가능합니다 이것은 충분히 긴 설명을 담고 있는 답변입니다 계속 이어지는 문장으로 구성되어 있습니다.",
		"rag",
		`{"workflow_type":"rag","needs_rag":true,"needs_tools":false,"complexity":"medium","notes":"plan"}`,
	)
	cache := retrieval.NewSemanticCache(nil, time.Hour, nil)
	ragPipeline := rag.NewPipeline(seededHybrid(), nil, cache, engine, singleStageRAGConfig(), nil)
	g := NewGraph(nil, engine, nil, ragPipeline, checkpoint.NewMemoryStore(), nil)

	first := g.Run(context.Background(), Request{Message: "팔로워 조건이 뭐야", SessionID: "cache-session-1"})
	require.True(t, first.Success)

	second := g.Run(context.Background(), Request{Message: "팔로워 조건이 뭐야", SessionID: "cache-session-2"})
	require.True(t, second.Success)

	assert.Equal(t, first.Response, second.Response)
}

// --- session resume ---

func TestGraph_ResumeAppendsToCheckpointedHistory(t *testing.T) {
	engine := testEngine("general response one", "general response two")
	store := checkpoint.NewMemoryStore()
	g := NewGraph(nil, engine, nil, nil, store, nil)

	first := g.Run(context.Background(), Request{Message: "hello", SessionID: "s1"})
	require.True(t, first.Success)
	require.False(t, first.Resumed)

	second := g.Resume(context.Background(), "s1", "follow up")
	require.True(t, second.Success)
	assert.True(t, second.Resumed)

	var resumed OrchestratorState
	found, err := store.Get(context.Background(), "s1", &resumed)
	require.NoError(t, err)
	require.True(t, found)
	require.GreaterOrEqual(t, len(resumed.Messages), 4)
	assert.Equal(t, "hello", resumed.Messages[0].Content)
	assert.Equal(t, "follow up", resumed.Messages[2].Content)
}

type nopSession struct{}

func (n *nopSession) CallTool(ctx context.Context, toolName string, args map[string]any) (map[string]any, error) {
	return map[string]any{}, nil
}

// --- creator evaluation feeding mission scoring ---

func TestGraph_MissionWorkflowEvaluatesCreatorFromRawMetrics(t *testing.T) {
	engine := testEngine("mission")
	g := NewGraph(nil, engine, nil, nil, checkpoint.NewMemoryStore(), nil)
	g.Creator = &agents.CreatorAgent{}

	metrics := &agents.CreatorMetrics{
		Followers:      250000,
		AvgLikes:       8000,
		AvgComments:    500,
		PostsPerWeek:   5,
		EngagementRate: 3.4,
		Posts30d:       20,
		Reports90d:     0,
		BrandFit:       0.7,
	}
	requirement := agents.MissionRequirement{
		MissionID:     "m1",
		MinFollowers:  50000,
		MinEngagement: 0.02,
		MinGrade:      agents.GradeB,
	}

	sink := &captureSink{}
	g.Metrics = sink

	resp := g.Run(context.Background(), Request{
		Message: "이 크리에이터에게 맞는 미션 추천해줘",
		Context: map[string]any{
			"creator_id":           "creator-1",
			"creator_platform":     "tiktok",
			"creator_handle":       "test_creator",
			"creator_metrics":      metrics,
			"mission_requirements": []agents.MissionRequirement{requirement},
		},
	})

	require.True(t, resp.Success)
	require.Len(t, resp.MissionRecommendations, 1)
	assert.Equal(t, "m1", resp.MissionRecommendations[0].MissionID)

	var sawCreator bool
	for _, entry := range resp.AuditTrail {
		if entry.Step == "creator" {
			sawCreator = true
			assert.Equal(t, "accept", entry.Fields["decision"])
			score, _ := entry.Fields["score"].(float64)
			assert.GreaterOrEqual(t, score, 70.0)
			assert.LessOrEqual(t, score, 100.0)
		}
	}
	assert.True(t, sawCreator, "expected a creator audit entry")
	assert.Contains(t, sink.histograms, "creator.score")
	assert.Contains(t, sink.counters, "creator.accepted")
}

// --- session teardown ---

func TestGraph_ClearSessionDeletesCheckpoint(t *testing.T) {
	engine := testEngine("general response")
	store := checkpoint.NewMemoryStore()
	g := NewGraph(nil, engine, nil, nil, store, nil)

	resp := g.Run(context.Background(), Request{Message: "hello", SessionID: "s-clear"})
	require.True(t, resp.Success)
	require.True(t, resp.StateSaved)

	require.NoError(t, g.ClearSession(context.Background(), "s-clear"))

	var st OrchestratorState
	found, err := store.Get(context.Background(), "s-clear", &st)
	require.NoError(t, err)
	assert.False(t, found)
}

// --- metrics export ---

func TestGraph_RecordsRunMetrics(t *testing.T) {
	engine := testEngine("general response")
	g := NewGraph(nil, engine, nil, nil, checkpoint.NewMemoryStore(), nil)
	sink := &captureSink{}
	g.Metrics = sink
	g.Breakers = resilience.NewManager(nil)
	g.Breakers.GetOrCreate("web", 3, time.Minute)

	resp := g.Run(context.Background(), Request{Message: "hello"})
	require.True(t, resp.Success)

	assert.Contains(t, sink.histograms, "orchestrator.total_ms")
	assert.Contains(t, sink.gauges, "breaker.state")
}

type captureSink struct {
	counters   []string
	histograms []string
	gauges     []string
}

func (c *captureSink) Counter(name string, labels ...string) { c.counters = append(c.counters, name) }
func (c *captureSink) Histogram(name string, value float64, labels ...string) {
	c.histograms = append(c.histograms, name)
}
func (c *captureSink) Gauge(name string, value float64, labels ...string) {
	c.gauges = append(c.gauges, name)
}
