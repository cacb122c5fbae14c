package orchestrator

import (
	"context"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/mcp"
)

// toolPolicyAnyOK reports whether at least one tool call in the pass
// succeeded.
func toolPolicyAnyOK(out mcp.Output) bool {
	for _, rec := range out.ToolPolicy {
		if rec.OK {
			return true
		}
	}
	return len(out.ToolPolicy) == 0 // no tools attempted counts as not-failed
}

// buildMCPSpec assembles a per-agent tool request from the message plus
// any tool targets the caller put in the request context. The default is
// a web search keyed off the raw message; URLs promote the pass to
// supadata-first, a YouTube channel or video list adds the youtube
// family. Sanitization happens inside the service, not here.
func buildMCPSpec(state *OrchestratorState, req Request) *mcp.Spec {
	spec := &mcp.Spec{
		SearchQuery: req.Message,
		WebLimit:    5,
	}
	rc := req.Context

	if urls, ok := rc["urls"].([]string); ok && len(urls) > 0 {
		spec.URLs = urls
		spec.ToolPriority = mcp.PrioritySupadataFirst
		spec.Supadata = &mcp.SupadataSpec{ScrapeURLs: urls}
	}
	if channel, ok := rc["youtube_channel"].(string); ok && channel != "" {
		spec.YouTube = &mcp.YouTubeSpec{ChannelHandle: channel}
	}
	if ids, ok := rc["youtube_video_ids"].([]string); ok && len(ids) > 0 {
		if spec.YouTube == nil {
			spec.YouTube = &mcp.YouTubeSpec{}
		}
		spec.YouTube.VideoIDs = ids
	}
	if transcripts, ok := rc["transcript_urls"].([]string); ok && len(transcripts) > 0 {
		if spec.Supadata == nil {
			spec.Supadata = &mcp.SupadataSpec{}
		}
		spec.Supadata.TranscriptURLs = transcripts
	}
	return spec
}

// toolEnrichment executes MCP tools iff plan.needs_tools OR the workflow
// is one of {mission, analytics, data_collection}.
func (g *Graph) toolEnrichment(ctx context.Context, state *OrchestratorState, req Request) {
	needsTools := state.Plan != nil && state.Plan.NeedsTools
	forcedWorkflows := state.WorkflowType == WorkflowMission || state.WorkflowType == WorkflowAnalytics || state.WorkflowType == WorkflowDataCollection

	if !needsTools && !forcedWorkflows {
		state.ToolEnrichmentResult = &ToolEnrichmentAudit{Reason: mcp.ReasonNotNeeded}
		state.appendAudit("tool_enrichment", map[string]any{"reason": mcp.ReasonNotNeeded})
		return
	}

	if g.MCP == nil {
		state.ToolEnrichmentResult = &ToolEnrichmentAudit{Reason: mcp.ReasonNoSpecOrSvc}
		state.appendAudit("tool_enrichment", map[string]any{"reason": mcp.ReasonNoSpecOrSvc})
		return
	}

	spec := buildMCPSpec(state, Request{Message: lastUserMessage(state), Context: req.Context})
	out := g.MCP.Enrich(ctx, true, spec)
	state.ToolEnrichmentResult = &ToolEnrichmentAudit{Ran: out.Ran, Reason: out.Reason, Output: out}
	state.appendAudit("tool_enrichment", map[string]any{"reason": out.Reason, "ran": out.Ran})
}

func lastUserMessage(state *OrchestratorState) string {
	for i := len(state.Messages) - 1; i >= 0; i-- {
		if state.Messages[i].Role == "user" {
			return state.Messages[i].Content
		}
	}
	return ""
}
