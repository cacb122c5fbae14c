package core

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cast"
)

// Settings holds the immutable, per-process configuration. It is built
// once at startup via NewSettings and handed out as read-only per-agent
// runtime configs; nothing in this module mutates a *Settings after
// construction.
type Settings struct {
	LLMModels       []string // first entry -> DefaultModel, second -> FastModel
	DefaultModel    string
	FastModel       string
	DeepModel       string
	FallbackModel   string
	EmbeddingModel  string
	VectorDB        string // "pinecone" (default), "qdrant", "memory"

	VectorWeight  float64
	KeywordWeight float64
	MaxResults    int
	GraphEnabled  bool
	GraphWeight   float64

	Breakers map[string]BreakerPolicy // keyed by tool family: "web", "youtube", "supadata"

	MaxLoops int

	SemanticCacheTTL time.Duration

	DeepAgents DeepAgentsConfig

	Logger Logger

	// configFileErr carries a WithConfigFile read/parse failure until
	// validate runs; Option funcs cannot return errors themselves.
	configFileErr error
}

// BreakerPolicy configures one named circuit breaker plus the retry/timeout
// envelope wrapped around it.
type BreakerPolicy struct {
	FailMax         int
	ResetTimeout    time.Duration
	TimeoutSecs     time.Duration
	MaxRetries      int
	BackoffBaseSecs time.Duration
	BackoffMaxSecs  time.Duration
	JitterSecs      time.Duration
}

// DeepAgentsConfig configures the optional iterative self-critique loop.
type DeepAgentsConfig struct {
	MaxSteps        int
	CriticRounds    int
	QualityThreshold float64
}

func defaultBreakerPolicy() BreakerPolicy {
	return BreakerPolicy{
		FailMax:         3,
		ResetTimeout:    30 * time.Second,
		TimeoutSecs:     8 * time.Second,
		MaxRetries:      1,
		BackoffBaseSecs: 400 * time.Millisecond,
		BackoffMaxSecs:  3 * time.Second,
		JitterSecs:      200 * time.Millisecond,
	}
}

// Option mutates a Settings under construction. Options are applied after
// environment variables: defaults, then env vars, then functional options.
type Option func(*Settings)

// NewSettings builds an immutable Settings: defaults, overridden by
// recognized environment variables, overridden by explicit Option values.
func NewSettings(opts ...Option) (*Settings, error) {
	s := &Settings{
		LLMModels:      []string{"gpt-4o-mini", "gpt-4o-mini"},
		EmbeddingModel: "text-embedding-3-small",
		VectorDB:       "pinecone",
		VectorWeight:   0.7,
		KeywordWeight:  0.3,
		MaxResults:     3,
		GraphEnabled:   false,
		GraphWeight:    0.0,
		MaxLoops:       2,
		Breakers: map[string]BreakerPolicy{
			"web":      defaultBreakerPolicy(),
			"youtube":  defaultBreakerPolicy(),
			"supadata": defaultBreakerPolicy(),
		},
		SemanticCacheTTL: time.Hour,
		DeepAgents: DeepAgentsConfig{
			MaxSteps:         4,
			CriticRounds:     1,
			QualityThreshold: 0.6,
		},
		Logger: NoOpLogger{},
	}

	applyEnv(s)

	for _, opt := range opts {
		opt(s)
	}

	if len(s.LLMModels) > 0 {
		s.DefaultModel = s.LLMModels[0]
	}
	if len(s.LLMModels) > 1 {
		s.FastModel = s.LLMModels[1]
	} else if s.FastModel == "" {
		s.FastModel = s.DefaultModel
	}
	if s.DeepModel == "" {
		s.DeepModel = s.DefaultModel
	}
	if s.FallbackModel == "" {
		s.FallbackModel = s.FastModel
	}

	if err := s.validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) validate() error {
	if s.configFileErr != nil {
		return s.configFileErr
	}
	if s.MaxLoops < 0 {
		return NewFrameworkError("NewSettings", "config", ErrInvalidConfiguration)
	}
	if s.VectorWeight < 0 || s.KeywordWeight < 0 {
		return NewFrameworkError("NewSettings", "config", ErrInvalidConfiguration)
	}
	return nil
}

func applyEnv(s *Settings) {
	if v := os.Getenv("ORCH_VECTOR_DB"); v != "" {
		s.VectorDB = v
	}
	if v := os.Getenv("ORCH_EMBEDDING_MODEL"); v != "" {
		s.EmbeddingModel = v
	}
	if v := os.Getenv("ORCH_MAX_LOOPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.MaxLoops = n
		}
	}
	if v := os.Getenv("ORCH_SEMANTIC_CACHE_TTL_SECS"); v != "" {
		s.SemanticCacheTTL = time.Duration(cast.ToInt(v)) * time.Second
	}
	if v := os.Getenv("ORCH_VECTOR_WEIGHT"); v != "" {
		s.VectorWeight = cast.ToFloat64(v)
	}
	if v := os.Getenv("ORCH_KEYWORD_WEIGHT"); v != "" {
		s.KeywordWeight = cast.ToFloat64(v)
	}
}

// WithLLMModels sets the ordered model list; first becomes DefaultModel,
// second FastModel.
func WithLLMModels(models ...string) Option {
	return func(s *Settings) { s.LLMModels = models }
}

// WithDeepModel overrides the "deep" slot model.
func WithDeepModel(model string) Option {
	return func(s *Settings) { s.DeepModel = model }
}

// WithFallbackModel overrides the "fallback" slot model.
func WithFallbackModel(model string) Option {
	return func(s *Settings) { s.FallbackModel = model }
}

// WithVectorDB selects the vector backend: "pinecone", "qdrant", or "memory".
func WithVectorDB(name string) Option {
	return func(s *Settings) { s.VectorDB = name }
}

// WithHybridWeights sets the hybrid-search fusion weights.
func WithHybridWeights(vector, keyword float64) Option {
	return func(s *Settings) { s.VectorWeight = vector; s.KeywordWeight = keyword }
}

// WithMaxResults sets the retrieval top_k.
func WithMaxResults(n int) Option {
	return func(s *Settings) { s.MaxResults = n }
}

// WithMaxLoops overrides the orchestrator loop budget (default 2).
func WithMaxLoops(n int) Option {
	return func(s *Settings) { s.MaxLoops = n }
}

// WithBreakerPolicy overrides the policy for a named tool family.
func WithBreakerPolicy(tool string, policy BreakerPolicy) Option {
	return func(s *Settings) {
		if s.Breakers == nil {
			s.Breakers = map[string]BreakerPolicy{}
		}
		s.Breakers[tool] = policy
	}
}

// WithSemanticCacheTTL overrides the RAG semantic cache TTL.
func WithSemanticCacheTTL(ttl time.Duration) Option {
	return func(s *Settings) { s.SemanticCacheTTL = ttl }
}

// WithLogger injects the process Logger.
func WithLogger(logger Logger) Option {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

// BreakerPolicyFor returns the configured policy for a tool family, falling
// back to a safe default if none was configured.
func (s *Settings) BreakerPolicyFor(tool string) BreakerPolicy {
	if p, ok := s.Breakers[tool]; ok {
		return p
	}
	return defaultBreakerPolicy()
}
