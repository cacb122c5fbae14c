package core

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSettingsDefaults(t *testing.T) {
	s, err := NewSettings()
	require.NoError(t, err)

	assert.Equal(t, s.LLMModels[0], s.DefaultModel)
	assert.Equal(t, s.LLMModels[1], s.FastModel)
	assert.Equal(t, s.DefaultModel, s.DeepModel)
	assert.Equal(t, s.FastModel, s.FallbackModel)
	assert.Equal(t, "pinecone", s.VectorDB)
	assert.Equal(t, 2, s.MaxLoops)
	assert.Equal(t, time.Hour, s.SemanticCacheTTL)
	assert.InDelta(t, 0.7, s.VectorWeight, 1e-9)
	assert.InDelta(t, 0.3, s.KeywordWeight, 1e-9)

	for _, tool := range []string{"web", "youtube", "supadata"} {
		policy, ok := s.Breakers[tool]
		require.True(t, ok, tool)
		assert.Equal(t, 3, policy.FailMax)
		assert.Equal(t, 30*time.Second, policy.ResetTimeout)
		assert.Equal(t, 1, policy.MaxRetries)
	}
}

func TestNewSettingsModelSlots(t *testing.T) {
	s, err := NewSettings(WithLLMModels("model-a"))
	require.NoError(t, err)
	assert.Equal(t, "model-a", s.DefaultModel)
	assert.Equal(t, "model-a", s.FastModel)

	s, err = NewSettings(WithLLMModels("model-a", "model-b"), WithDeepModel("model-c"))
	require.NoError(t, err)
	assert.Equal(t, "model-a", s.DefaultModel)
	assert.Equal(t, "model-b", s.FastModel)
	assert.Equal(t, "model-c", s.DeepModel)
	assert.Equal(t, "model-b", s.FallbackModel)
}

func TestNewSettingsEnvOverrides(t *testing.T) {
	t.Setenv("ORCH_VECTOR_DB", "qdrant")
	t.Setenv("ORCH_MAX_LOOPS", "4")
	t.Setenv("ORCH_SEMANTIC_CACHE_TTL_SECS", "120")

	s, err := NewSettings()
	require.NoError(t, err)
	assert.Equal(t, "qdrant", s.VectorDB)
	assert.Equal(t, 4, s.MaxLoops)
	assert.Equal(t, 2*time.Minute, s.SemanticCacheTTL)
}

func TestNewSettingsRejectsNegativeWeights(t *testing.T) {
	_, err := NewSettings(WithHybridWeights(-0.1, 0.3))
	assert.Error(t, err)
}

func TestWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agent.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
llm_models: [gpt-4o, gpt-4o-mini]
deep_model: claude-sonnet-4
vector_db: memory
vector_weight: 0.6
keyword_weight: 0.4
max_loops: 3
semantic_cache_ttl_secs: 600
breakers:
  web:
    fail_max: 5
    reset_timeout_secs: 10
    timeout_secs: 4
deep_agents:
  max_steps: 6
`), 0o600))

	s, err := NewSettings(WithConfigFile(path))
	require.NoError(t, err)

	assert.Equal(t, "gpt-4o", s.DefaultModel)
	assert.Equal(t, "gpt-4o-mini", s.FastModel)
	assert.Equal(t, "claude-sonnet-4", s.DeepModel)
	assert.Equal(t, "memory", s.VectorDB)
	assert.InDelta(t, 0.6, s.VectorWeight, 1e-9)
	assert.InDelta(t, 0.4, s.KeywordWeight, 1e-9)
	assert.Equal(t, 3, s.MaxLoops)
	assert.Equal(t, 10*time.Minute, s.SemanticCacheTTL)
	assert.Equal(t, 6, s.DeepAgents.MaxSteps)

	web := s.Breakers["web"]
	assert.Equal(t, 5, web.FailMax)
	assert.Equal(t, 10*time.Second, web.ResetTimeout)
	assert.Equal(t, 4*time.Second, web.TimeoutSecs)
	// untouched keys keep their defaults
	assert.Equal(t, 1, web.MaxRetries)
	youtube := s.Breakers["youtube"]
	assert.Equal(t, 3, youtube.FailMax)
}

func TestWithConfigFileMissing(t *testing.T) {
	_, err := NewSettings(WithConfigFile(filepath.Join(t.TempDir(), "absent.yaml")))
	assert.Error(t, err)
}

func TestWithConfigFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm_models: [unterminated"), 0o600))
	_, err := NewSettings(WithConfigFile(path))
	assert.Error(t, err)
}
