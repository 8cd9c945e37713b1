package pulse

import "time"

// Payload carries event data from a producer to its subscribers. The map is
// shared by reference across the start and finish phases, so values added
// during the traced unit of work are visible to finish-phase subscribers.
type Payload map[string]any

// Event is the value handed to event-object subscribers: one occurrence of
// a named event, with the correlation id of its producer, the shared
// payload, and the start and finish stamps taken around the traced work.
type Event struct {
	// Name is the event name the occurrence was published under.
	Name string

	// ID correlates all occurrences emitted by one producer (see
	// Instrumenter).
	ID string

	// Payload is shared with the producer and may be mutated between the
	// start and finish phases.
	Payload Payload

	started  time.Time
	finished time.Time
}

// NewEvent creates an unstarted event. A nil payload is replaced with an
// empty one.
func NewEvent(name, id string, payload Payload) *Event {
	if payload == nil {
		payload = Payload{}
	}
	return &Event{Name: name, ID: id, Payload: payload}
}

// Start stamps the event as started now.
func (e *Event) Start() { e.start(time.Now()) }

// Finish stamps the event as finished now.
func (e *Event) Finish() { e.finish(time.Now()) }

func (e *Event) start(t time.Time)  { e.started = t }
func (e *Event) finish(t time.Time) { e.finished = t }

// Time returns when the event started.
func (e *Event) Time() time.Time { return e.started }

// End returns when the event finished.
func (e *Event) End() time.Time { return e.finished }

// Started reports whether Start has been called.
func (e *Event) Started() bool { return !e.started.IsZero() }

// Finished reports whether Finish has been called.
func (e *Event) Finished() bool { return !e.finished.IsZero() }

// Duration returns the elapsed time between start and finish. Stamps taken
// by Start and Finish carry Go's monotonic reading, so the result is immune
// to wall-clock adjustments.
func (e *Event) Duration() time.Duration { return e.finished.Sub(e.started) }

// Record runs fn between Start and Finish. A non-nil error from fn is
// stored in the payload under "error" and returned. Finish runs even when
// fn panics.
func (e *Event) Record(fn func() error) (err error) {
	e.Start()
	defer func() {
		if err != nil {
			e.Payload["error"] = err
		}
		e.Finish()
	}()
	return fn()
}
