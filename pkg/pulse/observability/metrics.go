package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/randalmurphal/pulse/pkg/pulse"
)

// MetricsRecorder records event occurrence metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordOccurrence records one completed occurrence with its duration
	// and error status.
	RecordOccurrence(ctx context.Context, name string, duration time.Duration, err error)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	occurrences metric.Int64Counter
	latency     metric.Float64Histogram
	failures    metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

// getDefaultMetrics returns the default OTel metrics instance.
// Lazily initializes the metrics on first call.
func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

// newOtelMetrics creates a new OTel metrics instance.
func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("pulse")

	occurrences, err := meter.Int64Counter("pulse.event.occurrences",
		metric.WithDescription("Number of event occurrences"),
	)
	if err != nil {
		return nil, err
	}

	latency, err := meter.Float64Histogram("pulse.event.latency_ms",
		metric.WithDescription("Event occurrence latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	failures, err := meter.Int64Counter("pulse.event.failures",
		metric.WithDescription("Number of failed event occurrences"),
	)
	if err != nil {
		return nil, err
	}

	return &otelMetrics{
		occurrences: occurrences,
		latency:     latency,
		failures:    failures,
	}, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	import "go.opentelemetry.io/otel"
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

// RecordOccurrence records one occurrence.
func (m *otelMetrics) RecordOccurrence(ctx context.Context, name string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("event", name),
	}

	m.occurrences.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.latency.Record(ctx, float64(duration)/float64(time.Millisecond), metric.WithAttributes(attrs...))

	if err != nil {
		m.failures.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// NewMetricsHandler returns an event-object handler that records every
// occurrence through recorder. A nil recorder uses the default OTel-backed
// one.
//
// Example:
//
//	bus.MustSubscribe(nil, observability.NewMetricsHandler(nil))
func NewMetricsHandler(recorder MetricsRecorder) pulse.EventFunc {
	if recorder == nil {
		recorder = NewMetricsRecorder()
	}
	return func(e *pulse.Event) error {
		recorder.RecordOccurrence(context.Background(), e.Name, e.Duration(), payloadError(e.Payload))
		return nil
	}
}
