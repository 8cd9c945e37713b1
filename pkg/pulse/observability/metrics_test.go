package observability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/randalmurphal/pulse/pkg/pulse"
)

// setupMetricsTest installs a test meter provider and returns its reader.
func setupMetricsTest(t *testing.T) (*sdkmetric.ManualReader, func()) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	originalProvider := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	cleanup := func() {
		otel.SetMeterProvider(originalProvider)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	}

	return reader, cleanup
}

// collectMetrics collects all metrics from the reader.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	err := reader.Collect(context.Background(), &rm)
	require.NoError(t, err)
	return &rm
}

// findMetric finds a metric by name in the collected data.
func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// eventCount returns the counter value recorded for one event name.
func eventCount(m *metricdata.Metrics, event string) (int64, bool) {
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		return 0, false
	}
	for _, dp := range sum.DataPoints {
		for _, attr := range dp.Attributes.ToSlice() {
			if attr.Key == "event" && attr.Value.AsString() == event {
				return dp.Value, true
			}
		}
	}
	return 0, false
}

func TestNewMetricsRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordOccurrence(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("records occurrence count", func(t *testing.T) {
		m.RecordOccurrence(ctx, "order.placed", 50*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "pulse.event.occurrences")
		require.NotNil(t, metric)

		count, found := eventCount(metric, "order.placed")
		require.True(t, found, "Expected a datapoint for event=order.placed")
		assert.GreaterOrEqual(t, count, int64(1))
	})

	t.Run("records latency", func(t *testing.T) {
		m.RecordOccurrence(ctx, "query.sql", 100*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "pulse.event.latency_ms")
		require.NotNil(t, metric)

		hist, ok := metric.Data.(metricdata.Histogram[float64])
		require.True(t, ok, "Expected Histogram type")
		require.NotEmpty(t, hist.DataPoints)
	})

	t.Run("records failures when an error is present", func(t *testing.T) {
		m.RecordOccurrence(ctx, "failing.op", 10*time.Millisecond, errors.New("boom"))

		rm := collectMetrics(t, reader)
		metric := findMetric(rm, "pulse.event.failures")
		require.NotNil(t, metric)

		count, found := eventCount(metric, "failing.op")
		require.True(t, found, "Expected a failure datapoint")
		assert.GreaterOrEqual(t, count, int64(1))
	})

	t.Run("does not record a failure on success", func(t *testing.T) {
		m.RecordOccurrence(ctx, "clean.op", 10*time.Millisecond, nil)

		rm := collectMetrics(t, reader)
		if metric := findMetric(rm, "pulse.event.failures"); metric != nil {
			if count, found := eventCount(metric, "clean.op"); found {
				assert.Equal(t, int64(0), count)
			}
		}
	})
}

func TestNewMetricsHandlerOnBus(t *testing.T) {
	reader, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)

	bus := pulse.NewBus(pulse.WithLogger(nil))
	bus.MustSubscribe(nil, NewMetricsHandler(m))
	inst := pulse.NewInstrumenter(bus)

	require.NoError(t, inst.Instrument("job.run", nil, func(p pulse.Payload) error {
		return nil
	}))

	boom := errors.New("boom")
	err = inst.Instrument("job.run", nil, func(p pulse.Payload) error {
		return boom
	})
	assert.Equal(t, boom, err)

	rm := collectMetrics(t, reader)

	occurrences := findMetric(rm, "pulse.event.occurrences")
	require.NotNil(t, occurrences)
	count, found := eventCount(occurrences, "job.run")
	require.True(t, found)
	assert.Equal(t, int64(2), count)

	failures := findMetric(rm, "pulse.event.failures")
	require.NotNil(t, failures)
	count, found = eventCount(failures, "job.run")
	require.True(t, found)
	assert.Equal(t, int64(1), count)
}

func TestNewMetricsHandlerDefaultRecorder(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	handler := NewMetricsHandler(nil)
	require.NotNil(t, handler)

	e := pulse.NewEvent("any.op", "", nil)
	e.Start()
	e.Finish()
	assert.NotPanics(t, func() {
		_ = handler(e)
	})
}

func TestNewOtelMetrics_Creation(t *testing.T) {
	_, cleanup := setupMetricsTest(t)
	defer cleanup()

	m, err := newOtelMetrics()
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.NotNil(t, m.occurrences)
	assert.NotNil(t, m.latency)
	assert.NotNil(t, m.failures)
}
