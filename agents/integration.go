package agents

import "context"

// IntegrationSink is the narrow seam for whatever downstream system
// (CRM, ledger, notification service) a successful onboarding decision
// needs to reach; implementations live outside this package.
type IntegrationSink interface {
	Notify(ctx context.Context, creatorID string, decision Decision) error
}

// IntegrationRequest is the integration agent's input contract.
type IntegrationRequest struct {
	CreatorID string
	Decision  Decision
}

// IntegrationResult is the single field the integration agent writes back.
type IntegrationResult struct {
	Delivered bool
	Error     string
}

// IntegrationAgent is a thin contract: it forwards the onboarding decision
// to an external sink and records whether delivery succeeded.
type IntegrationAgent struct {
	Sink IntegrationSink
}

// Run delivers the decision to the configured sink, if any.
func (a *IntegrationAgent) Run(ctx context.Context, req IntegrationRequest) IntegrationResult {
	if a.Sink == nil {
		return IntegrationResult{Delivered: false, Error: "no integration sink configured"}
	}
	if err := a.Sink.Notify(ctx, req.CreatorID, req.Decision); err != nil {
		return IntegrationResult{Delivered: false, Error: err.Error()}
	}
	return IntegrationResult{Delivered: true}
}
