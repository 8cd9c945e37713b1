package pulse

import "time"

// Clock supplies the two time sources dispatch depends on: a wall clock for
// calendar timestamps and a monotonic reading for elapsed-time measurement.
// Implementations must be safe for concurrent use.
type Clock interface {
	// Now returns the current wall-clock time.
	Now() time.Time

	// Monotonic returns the time elapsed since an arbitrary fixed origin.
	// Readings are unaffected by wall-clock adjustments and are only
	// meaningful relative to each other.
	Monotonic() time.Duration
}

// systemClock reads the process clocks.
type systemClock struct{}

var _ Clock = systemClock{}

var processStart = time.Now()

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Monotonic() time.Duration { return time.Since(processStart) }

// monotonicTime anchors a monotonic reading as a time.Time at a fixed
// arbitrary origin. The result is not calendar time; only the difference
// between two anchored readings is meaningful.
func monotonicTime(c Clock) time.Time {
	return time.Time{}.Add(c.Monotonic())
}
