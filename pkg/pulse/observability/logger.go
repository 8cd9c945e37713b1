// Package observability provides ready-made subscribers that wire a pulse
// bus into production observability backends.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//
// Each handler is independent; subscribe only what you need. Metrics fall
// back to a no-op recorder when OTel initialization fails.
package observability

import (
	"log/slog"
	"time"

	"github.com/randalmurphal/pulse/pkg/pulse"
)

// NewLogHandler returns a timed handler that logs one line per occurrence.
// Successful occurrences log at Info; occurrences whose payload carries an
// "error" value log at Error. A nil logger disables the handler.
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	bus.MustSubscribe(nil, observability.NewLogHandler(logger))
func NewLogHandler(logger *slog.Logger) pulse.TimedFunc {
	return func(name string, start, finish time.Time, id string, payload pulse.Payload) error {
		if logger == nil {
			return nil
		}
		attrs := []any{
			slog.String("event", name),
			slog.Float64("duration_ms", durationMs(start, finish)),
		}
		if id != "" {
			attrs = append(attrs, slog.String("instrumentation_id", id))
		}
		if err := payloadError(payload); err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
			logger.Error("event failed", attrs...)
			return nil
		}
		logger.Info("event observed", attrs...)
		return nil
	}
}

// EnrichLogger adds event context to a logger.
// Returns a new logger with event and instrumentation_id fields.
//
// Example:
//
//	enriched := EnrichLogger(logger, "order.placed", id)
//	enriched.Info("doing work") // includes event, instrumentation_id
func EnrichLogger(logger *slog.Logger, event, id string) *slog.Logger {
	if logger == nil {
		return nil
	}
	return logger.With(
		slog.String("event", event),
		slog.String("instrumentation_id", id),
	)
}

// durationMs converts a stamp pair to fractional milliseconds.
func durationMs(start, finish time.Time) float64 {
	return float64(finish.Sub(start)) / float64(time.Millisecond)
}

// payloadError extracts the "error" value recorded during an occurrence,
// if any.
func payloadError(payload pulse.Payload) error {
	if payload == nil {
		return nil
	}
	if err, ok := payload["error"].(error); ok {
		return err
	}
	return nil
}
