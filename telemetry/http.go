package telemetry

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewHTTPClient returns an *http.Client whose transport records a client
// span and request metrics for every outbound call. Every SDK client this
// module constructs (OpenAI, Anthropic) uses it as the default transport,
// so external-call latency shows up under the same trace as the
// orchestrator run that caused it.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
}
