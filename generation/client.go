// Package generation is the multi-provider Generation Engine: a model
// registry with four logical slots (default/fast/deep/fallback), a
// selection rule, a sanitize-retry-fallback call sequence, and an
// optional one-shot OpenAI function-calling round.
package generation

import "context"

// Message is one entry in the assembled prompt.
type Message struct {
	Role    string // "system", "user", "assistant", "tool"
	Content string
}

// Hints steer slot selection without naming a concrete model.
type Hints struct {
	Latency    string // "fast" requests the fast slot
	Complexity string // "deep" requests the deep slot
	Task       string // "analysis", "code", "reasoning" also request deep
}

// FunctionSpec describes one OpenAI-style callable function.
type FunctionSpec struct {
	Name        string
	Description string
	Parameters  map[string]any // JSON schema
}

// FunctionHandler executes a function call chosen by the model and
// returns its serialized result.
type FunctionHandler func(ctx context.Context, arguments string) (string, error)

// Request is one generation call.
type Request struct {
	ModelName       string // explicit override; wins over slot selection if present in registry
	Messages        []Message
	Temperature     float32
	MaxTokens       int
	Hints           Hints
	OpenAIFunctions []FunctionSpec
	ToolHandlers    map[string]FunctionHandler
}

// Response is one generation call's outcome.
type Response struct {
	Content      string
	ModelName    string
	SlotUsed     string
	UsedFallback bool
	ToolCalled   string
}

// ModelClient is the capability every provider adapter implements.
type ModelClient interface {
	// Generate produces a completion for the given messages.
	Generate(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int) (string, error)
	// SupportsFunctions reports whether this client can run the
	// OpenAI-style one-shot function-calling round.
	SupportsFunctions() bool
	// GenerateWithFunctions performs a one-shot function-call round:
	// the model picks at most one function, the handler runs, and its
	// result is folded into a follow-up completion.
	GenerateWithFunctions(ctx context.Context, modelName string, messages []Message, temperature float32, maxTokens int, functions []FunctionSpec, handlers map[string]FunctionHandler) (string, string, error)
}
