// Package orchestrator implements the deterministic, loop-bounded
// orchestrator graph: route -> plan -> tool_enrichment -> (replan |
// deep_agents | rag | domain agent | general) -> final_synthesis, with a
// durable, checkpointed OrchestratorState threaded through every node.
package orchestrator

import (
	"time"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/agents"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/mcp"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/rag"
	"github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"
)

// WorkflowType names which domain path a run takes after routing/planning.
type WorkflowType string

const (
	WorkflowGeneral         WorkflowType = "general"
	WorkflowRAG             WorkflowType = "rag"
	WorkflowCompetency      WorkflowType = "competency"
	WorkflowRecommendation  WorkflowType = "recommendation"
	WorkflowMission         WorkflowType = "mission"
	WorkflowSearch          WorkflowType = "search"
	WorkflowAnalytics       WorkflowType = "analytics"
	WorkflowDataCollection  WorkflowType = "data_collection"
	WorkflowDeepAgents      WorkflowType = "deep_agents"
)

// SecurityLevel gates how much the router/planner trust the request.
type SecurityLevel string

const (
	SecurityStandard SecurityLevel = "standard"
	SecurityHigh     SecurityLevel = "high"
)

// Message is one entry in the durable conversation history.
type Message struct {
	Role    string // "user", "assistant", "system"
	Content string
}

// Request is the orchestrator's single entry-point input.
type Request struct {
	Message       string
	UserID        string
	SessionID     string
	Context       map[string]any
	SecurityLevel SecurityLevel
}

// RoutingResult is the router node's output.
type RoutingResult struct {
	Strategy   string
	Intent     string
	Confidence float64
	Raw        string
}

// Plan is the planner node's output: a machine-readable execution plan
// that may override WorkflowType and persists for one run unless a
// replan replaces it.
type Plan struct {
	WorkflowType   WorkflowType
	NeedsRAG       bool
	NeedsTools     bool
	Complexity     string // "simple", "medium", "high"
	CostPreference string // "budget", "balanced", "performance", "speed"
	Notes          string
}

// AuditEntry is one append-only record of a completed node.
type AuditEntry struct {
	Step      string
	Timestamp time.Time
	Fields    map[string]any
}

// ToolEnrichmentAudit records the outcome of one tool_enrichment attempt.
type ToolEnrichmentAudit struct {
	Ran    bool
	Reason mcp.ReasonCode
	Output mcp.Output
}

// ReplanAudit records the outcome of one replan attempt.
type ReplanAudit struct {
	Ran       bool
	NewPlan   Plan
	Reason    string
}

// OrchestratorState is the durable, checkpointed value threaded through
// every node of one session. The orchestrator exclusively mutates it;
// every node reads from and writes back into it. The state is a tagged
// envelope: domain-specific outputs each get a dedicated field instead
// of a shared map[string]any.
type OrchestratorState struct {
	ThreadID string

	Messages     []Message
	CurrentStep  string
	WorkflowType WorkflowType

	Routing RoutingResult
	Plan    *Plan

	LoopCount int
	MaxLoops  int

	ToolEnrichmentResult *ToolEnrichmentAudit
	ReplanResult         *ReplanAudit

	RAGResult         *rag.Result
	RetrievedDocuments []retrieval.RetrievedDocument
	RAGContext        string

	CompetencyData         *agents.CompetencyResult
	RecommendationData     *agents.RecommendationResult
	MissionRecommendations []agents.MissionAssignment
	SearchResults          *agents.SearchResult
	AnalyticsResults       *agents.AnalyticsResult
	ExternalAPIResults     *agents.IntegrationResult
	CollectedData          *agents.DataCollectionResult
	CreatorEvaluation      *agents.EvaluationResult

	SelectedLLMModel string

	PerformanceMetrics map[string]float64

	AuditTrail []AuditEntry
	Errors     []string

	FinalResponse string
}

// appendAudit sets CurrentStep to step and appends one audit record for
// it, touching no other field — the contract every node honors even when
// it fails.
func (s *OrchestratorState) appendAudit(step string, fields map[string]any) {
	s.CurrentStep = step
	s.AuditTrail = append(s.AuditTrail, AuditEntry{Step: step, Timestamp: time.Now(), Fields: fields})
}

// appendError records a node failure without discarding any other state,
// the failure contract every node honors: a failing node must not
// partially mutate state beyond appending to Errors.
func (s *OrchestratorState) appendError(op string, err error) {
	s.Errors = append(s.Errors, op+": "+err.Error())
}

// Response is the envelope returned by Run and Resume.
type Response struct {
	Success                bool
	Response               string
	WorkflowType           WorkflowType
	PerformanceMetrics     map[string]float64
	AuditTrail             []AuditEntry
	Errors                 []string
	ThreadID               string
	StateSaved             bool
	MissionRecommendations []agents.MissionAssignment
	Resumed                bool
}
