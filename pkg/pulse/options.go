package pulse

import "log/slog"

// Option configures a Bus.
type Option func(*Bus)

// WithClock replaces the bus clock. Intended for tests that need
// deterministic or skewed time sources.
//
// Example:
//
//	clk := &fakeClock{}
//	bus := pulse.NewBus(pulse.WithClock(clk))
func WithClock(c Clock) Option {
	return func(b *Bus) {
		if c != nil {
			b.clock = c
		}
	}
}

// WithLogger sets the logger for subscription lifecycle events, which are
// emitted at Debug level. Pass nil to disable logging. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// subscribeConfig holds per-subscription settings.
type subscribeConfig struct {
	monotonic bool
}

// SubscribeOption configures a single subscription.
type SubscribeOption func(*subscribeConfig)

// WithMonotonic classifies a timed handler as DisciplineMonotonicTimed: its
// stamps come from the monotonic clock and the measured interval survives
// wall-clock adjustments. It has no effect on evented or event-object
// handlers.
func WithMonotonic() SubscribeOption {
	return func(c *subscribeConfig) {
		c.monotonic = true
	}
}
