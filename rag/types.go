// Package rag implements the Retrieval-Augmented Generation pipeline: query
// expansion, parallel hybrid retrieval, rerank, context building, prompt
// optimization, generation, an optional hallucination check, refinement,
// and a semantic cache — the fixed ten-stage order from the platform's
// retrieval contract.
package rag

import (
	"time"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"
)

// Message is one turn of conversation history fed into context building.
type Message struct {
	Role    string
	Content string
}

// Request is one RAG pipeline invocation.
type Request struct {
	Query              string
	ConversationHistory []Message // last 20 are used; callers may pass more
	UserProfile        map[string]any
	TaskContext        map[string]any
	Hints              Hints
	Namespace          string
	Filter             map[string]any
}

// Hints steer generation slot selection for the pipeline's Generate stage.
type Hints struct {
	Complexity     string // "simple", "medium", "high"
	CostPreference string // "budget", "balanced", "performance", "speed"
	TaskType       string
}

// Result is the pipeline's output, consumed by the orchestrator's quality
// gate and by final synthesis.
type Result struct {
	Answer          string
	Cached          bool
	ExpandedQueries []string
	RetrievedDocs   []retrieval.RetrievedDocument
	Context         string
	HallucinationWarning bool
	Duration        time.Duration
}

// Config carries the pipeline's tunable knobs, mirroring Settings fields
// a caller has already resolved (expansion count, top_k, rerank threshold,
// context caps).
type Config struct {
	ExpansionCount     int // default 3
	TopK               int // default 3
	RerankMinScore     float64
	PerDocMinChars     int // default 800
	PerDocMaxChars     int // default 8000
	MaxContextChars    int // max_context_tokens * 4
	HistoryLimit       int // default 20
	HallucinationCheck bool
	RefineMinChars     int // responses shorter than this skip refinement, default 50
}

// DefaultConfig returns the pipeline's documented defaults.
func DefaultConfig() Config {
	return Config{
		ExpansionCount:     3,
		TopK:               3,
		RerankMinScore:     0.0,
		PerDocMinChars:     800,
		PerDocMaxChars:     8000,
		MaxContextChars:    16000,
		HistoryLimit:       20,
		HallucinationCheck: true,
		RefineMinChars:     50,
	}
}
