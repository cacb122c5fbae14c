package rag

import (
	"fmt"
	"strings"
	"time"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/retrieval"
)

const truncationMarker = "\n...[truncated]...\n"

// truncateDoc preserves the head and tail of content when it exceeds max,
// inserting a truncation marker between them. Content shorter than max
// (and, separately, shorter than min) passes through unchanged — min only
// bounds how aggressively short documents get padded conceptually, it
// never grows content.
func truncateDoc(content string, min, max int) string {
	if max <= 0 || len(content) <= max {
		return content
	}
	headLen := max / 2
	tailLen := max - headLen - len(truncationMarker)
	if tailLen < 0 {
		tailLen = 0
	}
	head := content[:headLen]
	tail := content[len(content)-tailLen:]
	return head + truncationMarker + tail
}

// BuildContext assembles the structured RAG prompt: system meta, user
// profile, task context, retrieved knowledge (per-doc truncated, total
// capped), conversation history (last historyLimit turns), then the
// current query. A truncation marker is appended to the whole section
// when the aggregate cap is reached.
func BuildContext(req Request, docs []retrieval.RetrievedDocument, cfg Config) string {
	var b strings.Builder

	fmt.Fprintf(&b, "## System\ntime: %s\nenv: production\n\n", time.Now().UTC().Format(time.RFC3339))

	if len(req.UserProfile) > 0 {
		b.WriteString("## User Profile\n")
		writeMap(&b, req.UserProfile)
		b.WriteString("\n")
	}

	if len(req.TaskContext) > 0 {
		b.WriteString("## Task Context\n")
		writeMap(&b, req.TaskContext)
		b.WriteString("\n")
	}

	b.WriteString("## Retrieved Knowledge\n")
	budget := cfg.MaxContextChars
	if budget <= 0 {
		budget = 16000
	}
	used := 0
	for i, d := range docs {
		body := truncateDoc(d.Content, cfg.PerDocMinChars, cfg.PerDocMaxChars)
		entry := fmt.Sprintf("[doc %d | score=%.2f]\n%s\n\n", i+1, d.Score, body)
		if used+len(entry) > budget {
			b.WriteString(truncationMarker)
			break
		}
		b.WriteString(entry)
		used += len(entry)
	}
	b.WriteString("\n")

	history := req.ConversationHistory
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = 20
	}
	if len(history) > limit {
		history = history[len(history)-limit:]
	}
	if len(history) > 0 {
		b.WriteString("## Conversation History\n")
		for _, m := range history {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Current Query\n%s\n", req.Query)

	return b.String()
}

func writeMap(b *strings.Builder, m map[string]any) {
	for k, v := range m {
		fmt.Fprintf(b, "- %s: %v\n", k, v)
	}
}

// OptimizePrompt collapses redundant whitespace and, when the prompt
// still exceeds budget, prunes from the end using a rough 1.5
// characters-per-token estimate — the cheap heuristic the pipeline uses
// instead of invoking the token estimator for every intermediate draft.
func OptimizePrompt(prompt string, maxTokens int) string {
	fields := strings.Fields(prompt)
	collapsed := strings.Join(fields, " ")

	if maxTokens <= 0 {
		return collapsed
	}
	maxChars := int(float64(maxTokens) * 1.5)
	if len(collapsed) <= maxChars {
		return collapsed
	}
	return collapsed[:maxChars] + truncationMarker
}
