package rag

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/generation"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"
)

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

func newTestEngine(responses ...string) *generation.Engine {
	r := generation.NewRegistry(nil)
	shared := &scriptedClient{responses: responses}
	r.Bind(generation.SlotFast, "fast-model", shared)
	r.Bind(generation.SlotDefault, "default-model", shared)
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

func TestPipeline_CacheHitShortCircuits(t *testing.T) {
	cache := retrieval.NewSemanticCache(nil, 0, nil)
	cache.Set(context.Background(), "  What Is Onboarding?  ", "cached answer", nil)

	p := NewPipeline(nil, nil, cache, nil, DefaultConfig(), nil)
	result := p.Run(context.Background(), Request{Query: "what is onboarding?"})

	assert.True(t, result.Cached)
	assert.Equal(t, "cached answer", result.Answer)
}

func TestPipeline_RunsFullStagesAndCaches(t *testing.T) {
	engine := newTestEngine("alt phrasing one\nalt phrasing two", "generated answer about onboarding", "NO", "generated answer about onboarding (refined)")
	cache := retrieval.NewSemanticCache(nil, 0, nil)
	cfg := DefaultConfig()
	cfg.ExpansionCount = 2

	p := NewPipeline(seededHybrid(), nil, cache, engine, cfg, nil)
	result := p.Run(context.Background(), Request{Query: "creator onboarding follower requirements"})

	require.False(t, result.Cached)
	assert.NotEmpty(t, result.RetrievedDocs)
	assert.NotEmpty(t, result.Answer)

	cached, ok := cache.Get(context.Background(), "creator onboarding follower requirements")
	require.True(t, ok)
	assert.Equal(t, result.Answer, cached.Response)
}

func TestPipeline_HallucinationWarningAppended(t *testing.T) {
	engine := newTestEngine("", "some answer", "NO, not supported")
	cfg := DefaultConfig()
	cfg.RefineMinChars = 10000 // skip refinement so the appended warning survives for assertion
	p := NewPipeline(seededHybrid(), nil, nil, engine, cfg, nil)

	result := p.Run(context.Background(), Request{Query: "creator onboarding"})
	assert.True(t, result.HallucinationWarning)
	assert.True(t, strings.Contains(result.Answer, "검증되지"))
}

func TestRouteHints(t *testing.T) {
	h := RouteHints(Hints{Complexity: "high", CostPreference: "speed", TaskType: "analysis"})
	assert.Equal(t, "deep", h.Complexity)
	assert.Equal(t, "fast", h.Latency)
	assert.Equal(t, "analysis", h.Task)
}
