package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/randalmurphal/pulse/pkg/pulse/observability"
	"github.com/randalmurphal/pulse/pkg/pulse/record"
	"github.com/randalmurphal/pulse/pkg/pulse/registry"
)

// Built-in handler kinds.
const (
	KindLog     = "log"     // Structured log line per occurrence
	KindMetrics = "metrics" // OpenTelemetry counters and latency histogram
	KindTrace   = "trace"   // OpenTelemetry span per occurrence
	KindRecord  = "record"  // Persist occurrences to a record store
)

// Builtins carries the dependencies of the built-in handler kinds.
type Builtins struct {
	// Logger receives log lines for the "log" kind.
	// Defaults to slog.Default when nil.
	Logger *slog.Logger

	// Store persists occurrences for the "record" kind. A "record"
	// entry may instead carry a "path" option naming a SQLite file.
	Store record.Store
}

// RegisterBuiltins registers the standard handler factories.
func RegisterBuiltins(reg *registry.Registry, deps Builtins) error {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	builtins := map[string]registry.Factory{
		KindLog: func(_ map[string]any) (any, error) {
			return observability.NewLogHandler(logger), nil
		},
		KindMetrics: func(_ map[string]any) (any, error) {
			return observability.NewMetricsHandler(nil), nil
		},
		KindTrace: func(_ map[string]any) (any, error) {
			return observability.NewSpanHandler(nil), nil
		},
		KindRecord: func(opts map[string]any) (any, error) {
			if path := NewOptions(opts).String("path", ""); path != "" {
				// The store opened here stays open for the life
				// of the process.
				store, err := record.NewSQLiteStore(path)
				if err != nil {
					return nil, err
				}
				return record.NewRecorder(store), nil
			}
			if deps.Store == nil {
				return nil, errors.New("record kind requires a store or a path option")
			}
			return record.NewRecorder(deps.Store), nil
		},
	}

	for kind, factory := range builtins {
		if err := reg.Register(kind, factory); err != nil {
			return fmt.Errorf("register builtin kind %q: %w", kind, err)
		}
	}
	return nil
}
