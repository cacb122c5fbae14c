// Package telemetry wraps OpenTelemetry into the progressive-disclosure
// API the corpus uses: simple Counter/Histogram/Gauge functions for 90% of
// call sites, with a Telemetry type for the few call sites that need a
// span. Grounded on itsneelabh-gomind/telemetry's api.go/metrics.go shape.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry is the process-wide metrics+tracing sink. It implements
// core.MetricsSink.
type Telemetry struct {
	meter  metric.Meter
	tracer trace.Tracer

	mu         sync.Mutex
	counters   map[string]metric.Float64Counter
	histograms map[string]metric.Float64Histogram
	gauges     map[string]metric.Float64Gauge
}

// New builds a Telemetry bound to the global OTel providers configured by
// the process (see Configure in config.go). Safe to use even if Configure
// was never called: OTel's default no-op providers absorb everything.
func New(instrumentationName string) *Telemetry {
	return &Telemetry{
		meter:      otel.Meter(instrumentationName),
		tracer:     otel.Tracer(instrumentationName),
		counters:   make(map[string]metric.Float64Counter),
		histograms: make(map[string]metric.Float64Histogram),
		gauges:     make(map[string]metric.Float64Gauge),
	}
}

func toAttrs(labels []string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels)/2)
	for i := 0; i+1 < len(labels); i += 2 {
		attrs = append(attrs, attribute.String(labels[i], labels[i+1]))
	}
	return attrs
}

// Counter increments name by 1, tagged with key/value label pairs.
func (t *Telemetry) Counter(name string, labels ...string) {
	t.mu.Lock()
	c, ok := t.counters[name]
	if !ok {
		var err error
		c, err = t.meter.Float64Counter(name)
		if err != nil {
			t.mu.Unlock()
			return
		}
		t.counters[name] = c
	}
	t.mu.Unlock()
	c.Add(context.Background(), 1, metric.WithAttributes(toAttrs(labels)...))
}

// Histogram records value in a distribution (latencies, sizes, queue
// depths — percentiles are computed by the metrics backend).
func (t *Telemetry) Histogram(name string, value float64, labels ...string) {
	t.mu.Lock()
	h, ok := t.histograms[name]
	if !ok {
		var err error
		h, err = t.meter.Float64Histogram(name)
		if err != nil {
			t.mu.Unlock()
			return
		}
		t.histograms[name] = h
	}
	t.mu.Unlock()
	h.Record(context.Background(), value, metric.WithAttributes(toAttrs(labels)...))
}

// Gauge records the current value of a quantity (active breaker count,
// in-flight tool calls).
func (t *Telemetry) Gauge(name string, value float64, labels ...string) {
	t.mu.Lock()
	g, ok := t.gauges[name]
	if !ok {
		var err error
		g, err = t.meter.Float64Gauge(name)
		if err != nil {
			t.mu.Unlock()
			return
		}
		t.gauges[name] = g
	}
	t.mu.Unlock()
	g.Record(context.Background(), value, metric.WithAttributes(toAttrs(labels)...))
}

// StartSpan starts a named span and returns the derived context plus the
// span itself; callers defer span.End().
func (t *Telemetry) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, name)
}
