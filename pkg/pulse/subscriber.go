package pulse

import (
	"fmt"
	"time"
)

// TimedFunc is the handler form for timed subscribers. start and finish are
// wall-clock stamps for Timed subscribers; for MonotonicTimed subscribers
// they are anchored monotonic readings, valid only for computing the
// elapsed interval.
type TimedFunc func(name string, start, finish time.Time, id string, payload Payload) error

// EventFunc is the handler form for event-object subscribers: one call per
// occurrence, receiving the finished event.
type EventFunc func(e *Event) error

// EventedHandler is the handler form for subscribers that want explicit
// calls at both phases of an occurrence. It takes priority over every other
// classification.
type EventedHandler interface {
	// Start is invoked when an occurrence begins.
	Start(name, id string, payload Payload) error

	// Finish is invoked when an occurrence completes. The payload is the
	// same value passed to Start and may have been mutated in between.
	Finish(name, id string, payload Payload) error
}

// PublishHandler is an optional capability of evented handlers. When
// present it receives single-phase publishes, which otherwise do not reach
// evented subscribers.
type PublishHandler interface {
	Publish(name string, payload Payload) error
}

// EventPublishHandler is an optional capability of evented handlers for
// receiving whole events on the PublishEvent path. Without it the event
// falls back to the Publish capability, dropping the stamps.
type EventPublishHandler interface {
	PublishEvent(e *Event) error
}

// Discipline identifies the calling convention used to notify a subscriber.
// It is fixed when the subscriber is created by probing the handler once;
// dispatch never re-inspects the handler.
type Discipline int

const (
	// DisciplineTimed delivers wall-clock start and finish stamps in a
	// single call after the occurrence completes.
	DisciplineTimed Discipline = iota

	// DisciplineMonotonicTimed is DisciplineTimed with stamps from the
	// monotonic clock, immune to wall-clock adjustments.
	DisciplineMonotonicTimed

	// DisciplineEvented delivers separate Start and Finish calls.
	DisciplineEvented

	// DisciplineEventObject delivers one finished *Event per occurrence.
	DisciplineEventObject
)

// String returns the discipline name.
func (d Discipline) String() string {
	switch d {
	case DisciplineTimed:
		return "timed"
	case DisciplineMonotonicTimed:
		return "monotonic_timed"
	case DisciplineEvented:
		return "evented"
	case DisciplineEventObject:
		return "event_object"
	default:
		return fmt.Sprintf("discipline(%d)", int(d))
	}
}

// Subscriber is a registered pattern/handler pair with a fixed dispatch
// discipline. Subscribers are immutable after creation except for the
// exclusion set maintained by name-based unsubscription. Identity is
// pointer identity; pass the value returned by Subscribe back to
// Unsubscribe to remove it.
type Subscriber struct {
	matcher *matcher
	disc    Discipline

	// Exactly one of these is set, matching disc.
	timed   TimedFunc
	event   EventFunc
	evented EventedHandler

	// Optional capabilities of evented handlers, probed once.
	publisher      PublishHandler
	eventPublisher EventPublishHandler
}

// newSubscriber classifies handler into a discipline. The evented form wins
// over the func forms; a timed func defaults to DisciplineTimed and is
// flipped to DisciplineMonotonicTimed by the monotonic flag.
func newSubscriber(m *matcher, handler any, monotonic bool) (*Subscriber, error) {
	s := &Subscriber{matcher: m}

	switch h := handler.(type) {
	case EventedHandler:
		s.disc = DisciplineEvented
		s.evented = h
		s.publisher, _ = handler.(PublishHandler)
		s.eventPublisher, _ = handler.(EventPublishHandler)
	case EventFunc:
		s.disc = DisciplineEventObject
		s.event = h
	case func(e *Event) error:
		s.disc = DisciplineEventObject
		s.event = h
	case TimedFunc:
		s.disc = DisciplineTimed
		s.timed = h
	case func(name string, start, finish time.Time, id string, payload Payload) error:
		s.disc = DisciplineTimed
		s.timed = h
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidHandler, handler)
	}

	if monotonic && s.disc == DisciplineTimed {
		s.disc = DisciplineMonotonicTimed
	}
	return s, nil
}

// Matches reports whether the subscriber is currently subscribed to name.
func (s *Subscriber) Matches(name string) bool { return s.matcher.matches(name) }

// Discipline returns the dispatch discipline fixed at subscribe time.
func (s *Subscriber) Discipline() Discipline { return s.disc }

// Pattern returns the pattern the subscriber was registered with: a string,
// a *regexp.Regexp, or nil for catch-all subscribers.
func (s *Subscriber) Pattern() any { return s.matcher.pattern() }

// exclude stops the subscriber from matching name while leaving every other
// name it matches intact.
func (s *Subscriber) exclude(name string) { s.matcher.exclude(name) }

// publish delivers a single-phase occurrence. Timed handlers observe an
// empty interval stamped from their clock source; event-object handlers
// receive an already-finished instantaneous event; evented handlers are
// only reached through their optional publish capability.
func (s *Subscriber) publish(clock Clock, name string, payload Payload) error {
	switch s.disc {
	case DisciplineTimed:
		now := clock.Now()
		return s.timed(name, now, now, "", payload)
	case DisciplineMonotonicTimed:
		now := monotonicTime(clock)
		return s.timed(name, now, now, "", payload)
	case DisciplineEventObject:
		e := NewEvent(name, "", payload)
		now := clock.Now()
		e.start(now)
		e.finish(now)
		return s.event(e)
	case DisciplineEvented:
		if s.publisher != nil {
			return s.publisher.Publish(name, payload)
		}
	}
	return nil
}

// publishEvent delivers a caller-built event. Timed handlers receive the
// event's own stamps unpacked into their signature.
func (s *Subscriber) publishEvent(e *Event) error {
	switch s.disc {
	case DisciplineTimed, DisciplineMonotonicTimed:
		return s.timed(e.Name, e.Time(), e.End(), e.ID, e.Payload)
	case DisciplineEventObject:
		return s.event(e)
	case DisciplineEvented:
		if s.eventPublisher != nil {
			return s.eventPublisher.PublishEvent(e)
		}
		if s.publisher != nil {
			return s.publisher.Publish(e.Name, e.Payload)
		}
	}
	return nil
}
