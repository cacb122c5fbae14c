package mcp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rayvoidx/creator-onboarding-agent-sub000/resilience"
)

type fakeSession struct {
	responses map[string]map[string]any
	calls     []string
}

func (f *fakeSession) CallTool(ctx context.Context, toolName string, args map[string]any) (map[string]any, error) {
	f.calls = append(f.calls, toolName)
	if resp, ok := f.responses[toolName]; ok {
		return resp, nil
	}
	return map[string]any{}, nil
}

func newTestPolicy(name string) Policy {
	return Policy{
		Breaker:    resilience.NewCircuitBreaker(name, 3, 30*time.Second, nil),
		MaxRetries: 0,
		Backoff:    resilience.BackoffConfig{Base: time.Millisecond},
	}
}

func TestService_NotNeeded(t *testing.T) {
	svc := &Service{}
	out := svc.Enrich(context.Background(), false, &Spec{SearchQuery: "x"})
	assert.False(t, out.Ran)
	assert.Equal(t, ReasonNotNeeded, out.Reason)
}

func TestService_NoSpecOrService(t *testing.T) {
	svc := &Service{}
	out := svc.Enrich(context.Background(), true, nil)
	assert.Equal(t, ReasonNoSpecOrSvc, out.Reason)
}

func TestService_SupadataFirstFallsBackToWebWhenEmpty(t *testing.T) {
	session := &fakeSession{responses: map[string]map[string]any{
		"supadata_scrape": {"results": []any{}},
		"web_search": {"results": []any{
			map[string]any{"title": "t", "url": "https://x", "snippet": "s"},
		}},
	}}
	svc := &Service{
		Web:      &WebTool{Session: session, Policy: newTestPolicy("web")},
		Supadata: &SupadataTool{Session: session, Policy: newTestPolicy("supadata")},
	}

	spec := &Spec{
		SearchQuery: "creator onboarding",
		WebLimit:    3,
		Supadata:    &SupadataSpec{ScrapeURLs: []string{"https://a"}},
	}
	out := svc.Enrich(context.Background(), true, spec)

	require.True(t, out.Ran)
	assert.Equal(t, ReasonOK, out.Reason)
	assert.Contains(t, session.calls, "supadata_scrape")
	assert.Contains(t, session.calls, "web_search")
	assert.Equal(t, []string{"s"}, out.ExternalSnippets)
}

func TestService_ParallelRunsBothFamilies(t *testing.T) {
	session := &fakeSession{responses: map[string]map[string]any{
		"web_search":      {"results": []any{map[string]any{"title": "t", "url": "https://x", "snippet": "s"}}},
		"supadata_scrape": {"results": []any{map[string]any{"url": "https://a", "content": "c", "ok": true}}},
	}}
	svc := &Service{
		Web:      &WebTool{Session: session, Policy: newTestPolicy("web")},
		Supadata: &SupadataTool{Session: session, Policy: newTestPolicy("supadata")},
	}

	spec := &Spec{
		SearchQuery:  "trend",
		WebLimit:     3,
		ToolPriority: PriorityParallel,
		Supadata:     &SupadataSpec{ScrapeURLs: []string{"https://a"}},
	}
	out := svc.Enrich(context.Background(), true, spec)

	require.True(t, out.Ran)
	require.NotNil(t, out.Supadata)
	assert.Len(t, out.Supadata.Scrapes, 1)
	assert.Equal(t, []string{"s"}, out.ExternalSnippets)
}

func TestService_AllFailuresReportReasonError(t *testing.T) {
	session := &fakeSession{}
	webBreaker := resilience.NewCircuitBreaker("web", 1, time.Hour, nil)
	webBreaker.Failure(assert.AnError) // opens immediately

	svc := &Service{
		Web: &WebTool{Session: session, Policy: Policy{Breaker: webBreaker}},
	}
	spec := &Spec{SearchQuery: "q", WebLimit: 3}
	out := svc.Enrich(context.Background(), true, spec)

	assert.Equal(t, ReasonError, out.Reason)
	assert.True(t, out.ToolPolicy["web"].Skipped)
}
