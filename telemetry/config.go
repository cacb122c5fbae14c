package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	stdouttrace "go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Configure installs a global TracerProvider: an OTLP gRPC exporter when
// ORCH_OTLP_ENDPOINT is set, otherwise a stdout exporter for local
// development. Metrics use OTel's default (no-op) MeterProvider unless the
// embedding application installs its own; this module only owns the
// instrumentation points, not where they are shipped.
func Configure(ctx context.Context) (shutdown func(context.Context) error, err error) {
	var exporter sdktrace.SpanExporter
	if endpoint := os.Getenv("ORCH_OTLP_ENDPOINT"); endpoint != "" {
		exporter, err = otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(endpoint), otlptracegrpc.WithInsecure())
	} else {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
	}
	if err != nil {
		return nil, err
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
