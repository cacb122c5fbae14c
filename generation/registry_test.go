package generation

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	name       string
	response   string
	err        error
	calls      int
	supportsFn bool
}

func (f *fakeClient) Generate(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeClient) SupportsFunctions() bool { return f.supportsFn }

func (f *fakeClient) GenerateWithFunctions(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int, functions []FunctionSpec, handlers map[string]FunctionHandler) (string, string, error) {
	content, err := f.Generate(ctx, modelName, messages, temperature, maxTokens)
	return content, "", err
}

func TestRegistry_ExplicitModelOverrideWins(t *testing.T) {
	r := NewRegistry(nil)
	fast := &fakeClient{response: "fast"}
	deep := &fakeClient{response: "deep"}
	r.Bind(SlotFast, "gpt-fast", fast)
	r.Bind(SlotDeep, "claude-deep", deep)

	client, model, _, ok := r.Select(Request{ModelName: "claude-deep"})
	require.True(t, ok)
	assert.Same(t, deep, client)
	assert.Equal(t, "claude-deep", model)
}

func TestRegistry_FastHintRoutesToFastSlot(t *testing.T) {
	r := NewRegistry(nil)
	def := &fakeClient{}
	fast := &fakeClient{}
	r.Bind(SlotDefault, "gpt-default", def)
	r.Bind(SlotFast, "gpt-fast", fast)

	client, _, slot, ok := r.Select(Request{Hints: Hints{Latency: "fast"}})
	require.True(t, ok)
	assert.Same(t, fast, client)
	assert.Equal(t, SlotFast, slot)
}

func TestRegistry_DeepTaskHintRoutesToDeepSlot(t *testing.T) {
	r := NewRegistry(nil)
	deep := &fakeClient{}
	r.Bind(SlotDeep, "claude-deep", deep)

	_, _, slot, ok := r.Select(Request{Hints: Hints{Task: "reasoning"}})
	require.True(t, ok)
	assert.Equal(t, SlotDeep, slot)
}

func TestRegistry_FallsBackToDefaultOrder(t *testing.T) {
	r := NewRegistry(nil)
	fallback := &fakeClient{}
	r.Bind(SlotFallback, "bedrock-fallback", fallback)

	_, model, slot, ok := r.Select(Request{})
	require.True(t, ok)
	assert.Equal(t, "bedrock-fallback", model)
	assert.Equal(t, SlotFallback, slot)
}

func TestRegistry_FallbackChainDedupsByModel(t *testing.T) {
	r := NewRegistry(nil)
	shared := &fakeClient{}
	r.Bind(SlotDefault, "gpt-4o-mini", shared)
	r.Bind(SlotFast, "gpt-4o-mini", shared) // same model bound to two slots
	r.Bind(SlotDeep, "claude-deep", &fakeClient{})

	chain := r.FallbackChain(SlotDefault)
	models := make([]string, len(chain))
	for i, b := range chain {
		models[i] = b.model
	}
	assert.Equal(t, []string{"gpt-4o-mini", "claude-deep"}, models)
}
