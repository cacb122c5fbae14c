package core

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape of a per-agent configuration file. Every
// field is optional; zero values leave the corresponding Settings default
// untouched so a file can override a single knob.
type fileConfig struct {
	LLMModels      []string `yaml:"llm_models"`
	DeepModel      string   `yaml:"deep_model"`
	FallbackModel  string   `yaml:"fallback_model"`
	EmbeddingModel string   `yaml:"embedding_model"`
	VectorDB       string   `yaml:"vector_db"`

	VectorWeight  *float64 `yaml:"vector_weight"`
	KeywordWeight *float64 `yaml:"keyword_weight"`
	MaxResults    int      `yaml:"max_results"`
	GraphEnabled  *bool    `yaml:"graph_enabled"`
	GraphWeight   *float64 `yaml:"graph_weight"`

	Breakers map[string]fileBreakerPolicy `yaml:"breakers"`

	MaxLoops *int `yaml:"max_loops"`

	SemanticCacheTTLSecs int `yaml:"semantic_cache_ttl_secs"`

	DeepAgents *fileDeepAgents `yaml:"deep_agents"`
}

type fileBreakerPolicy struct {
	FailMax          int     `yaml:"fail_max"`
	ResetTimeoutSecs float64 `yaml:"reset_timeout_secs"`
	TimeoutSecs      float64 `yaml:"timeout_secs"`
	MaxRetries       *int    `yaml:"max_retries"`
	BackoffBaseSecs  float64 `yaml:"backoff_base_secs"`
	BackoffMaxSecs   float64 `yaml:"backoff_max_secs"`
	JitterSecs       float64 `yaml:"jitter_secs"`
}

type fileDeepAgents struct {
	MaxSteps         int     `yaml:"max_steps"`
	CriticRounds     int     `yaml:"critic_rounds"`
	QualityThreshold float64 `yaml:"quality_threshold"`
}

func secs(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

// WithConfigFile reads a YAML per-agent configuration file and applies its
// recognized keys over the current Settings. Unset keys keep their prior
// values, so the option composes with env vars and other options. A
// missing or malformed file makes NewSettings fail via validate.
func WithConfigFile(path string) Option {
	return func(s *Settings) {
		raw, err := os.ReadFile(path)
		if err != nil {
			s.configFileErr = fmt.Errorf("config file %s: %w", path, err)
			return
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			s.configFileErr = fmt.Errorf("config file %s: %w", path, err)
			return
		}
		fc.apply(s)
	}
}

func (fc *fileConfig) apply(s *Settings) {
	if len(fc.LLMModels) > 0 {
		s.LLMModels = fc.LLMModels
	}
	if fc.DeepModel != "" {
		s.DeepModel = fc.DeepModel
	}
	if fc.FallbackModel != "" {
		s.FallbackModel = fc.FallbackModel
	}
	if fc.EmbeddingModel != "" {
		s.EmbeddingModel = fc.EmbeddingModel
	}
	if fc.VectorDB != "" {
		s.VectorDB = fc.VectorDB
	}
	if fc.VectorWeight != nil {
		s.VectorWeight = *fc.VectorWeight
	}
	if fc.KeywordWeight != nil {
		s.KeywordWeight = *fc.KeywordWeight
	}
	if fc.MaxResults > 0 {
		s.MaxResults = fc.MaxResults
	}
	if fc.GraphEnabled != nil {
		s.GraphEnabled = *fc.GraphEnabled
	}
	if fc.GraphWeight != nil {
		s.GraphWeight = *fc.GraphWeight
	}
	if fc.MaxLoops != nil {
		s.MaxLoops = *fc.MaxLoops
	}
	if fc.SemanticCacheTTLSecs > 0 {
		s.SemanticCacheTTL = time.Duration(fc.SemanticCacheTTLSecs) * time.Second
	}
	for tool, fp := range fc.Breakers {
		policy, ok := s.Breakers[tool]
		if !ok {
			policy = defaultBreakerPolicy()
		}
		if fp.FailMax > 0 {
			policy.FailMax = fp.FailMax
		}
		if fp.ResetTimeoutSecs > 0 {
			policy.ResetTimeout = secs(fp.ResetTimeoutSecs)
		}
		if fp.TimeoutSecs > 0 {
			policy.TimeoutSecs = secs(fp.TimeoutSecs)
		}
		if fp.MaxRetries != nil {
			policy.MaxRetries = *fp.MaxRetries
		}
		if fp.BackoffBaseSecs > 0 {
			policy.BackoffBaseSecs = secs(fp.BackoffBaseSecs)
		}
		if fp.BackoffMaxSecs > 0 {
			policy.BackoffMaxSecs = secs(fp.BackoffMaxSecs)
		}
		if fp.JitterSecs > 0 {
			policy.JitterSecs = secs(fp.JitterSecs)
		}
		s.Breakers[tool] = policy
	}
	if fc.DeepAgents != nil {
		if fc.DeepAgents.MaxSteps > 0 {
			s.DeepAgents.MaxSteps = fc.DeepAgents.MaxSteps
		}
		if fc.DeepAgents.CriticRounds > 0 {
			s.DeepAgents.CriticRounds = fc.DeepAgents.CriticRounds
		}
		if fc.DeepAgents.QualityThreshold > 0 {
			s.DeepAgents.QualityThreshold = fc.DeepAgents.QualityThreshold
		}
	}
}
