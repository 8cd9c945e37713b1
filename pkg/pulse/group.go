package pulse

import "time"

// dispatchGroup runs the two phases of one occurrence for one batch of
// same-discipline subscribers. Groups are built per occurrence by Handle
// and are never shared across occurrences or goroutines.
type dispatchGroup interface {
	start() error
	finish() error
}

// newGroup builds the group variant for d over listeners.
func newGroup(d Discipline, listeners []*Subscriber, clock Clock, name, id string, payload Payload) dispatchGroup {
	switch d {
	case DisciplineMonotonicTimed:
		return &monotonicTimedGroup{listeners: listeners, clock: clock, name: name, id: id, payload: payload}
	case DisciplineEvented:
		return &eventedGroup{listeners: listeners, name: name, id: id, payload: payload}
	case DisciplineEventObject:
		return &eventObjectGroup{listeners: listeners, clock: clock, name: name, id: id, payload: payload}
	default:
		return &timedGroup{listeners: listeners, clock: clock, name: name, id: id, payload: payload}
	}
}

// timedGroup stamps the occurrence with wall-clock times and notifies its
// listeners once, on finish.
type timedGroup struct {
	listeners []*Subscriber
	clock     Clock
	name, id  string
	payload   Payload
	started   time.Time
}

func (g *timedGroup) start() error {
	g.started = g.clock.Now()
	return nil
}

func (g *timedGroup) finish() error {
	return notifyTimed(g.listeners, g.name, g.started, g.clock.Now(), g.id, g.payload)
}

// monotonicTimedGroup is timedGroup with both stamps taken from the
// monotonic source, so the interval survives wall-clock adjustments.
type monotonicTimedGroup struct {
	listeners []*Subscriber
	clock     Clock
	name, id  string
	payload   Payload
	started   time.Time
}

func (g *monotonicTimedGroup) start() error {
	g.started = monotonicTime(g.clock)
	return nil
}

func (g *monotonicTimedGroup) finish() error {
	return notifyTimed(g.listeners, g.name, g.started, monotonicTime(g.clock), g.id, g.payload)
}

// notifyTimed fans one stamped interval out to every listener, attempting
// all of them regardless of earlier failures.
func notifyTimed(listeners []*Subscriber, name string, start, finish time.Time, id string, payload Payload) error {
	var failures errorList
	for _, l := range listeners {
		failures.call(func() error { return l.timed(name, start, finish, id, payload) })
	}
	return failures.err()
}

// eventedGroup forwards explicit start and finish calls to each listener.
// Each phase collects its failures independently.
type eventedGroup struct {
	listeners []*Subscriber
	name, id  string
	payload   Payload
}

func (g *eventedGroup) start() error {
	var failures errorList
	for _, l := range g.listeners {
		failures.call(func() error { return l.evented.Start(g.name, g.id, g.payload) })
	}
	return failures.err()
}

func (g *eventedGroup) finish() error {
	var failures errorList
	for _, l := range g.listeners {
		failures.call(func() error { return l.evented.Finish(g.name, g.id, g.payload) })
	}
	return failures.err()
}

// eventObjectGroup shares one event value across its listeners: start
// builds and stamps it, finish completes it and fans it out.
type eventObjectGroup struct {
	listeners []*Subscriber
	clock     Clock
	name, id  string
	payload   Payload
	event     *Event
}

func (g *eventObjectGroup) start() error {
	g.event = NewEvent(g.name, g.id, g.payload)
	g.event.start(g.clock.Now())
	return nil
}

func (g *eventObjectGroup) finish() error {
	if g.event == nil {
		// finish without start: the start stamp stays zero
		g.event = NewEvent(g.name, g.id, g.payload)
	}
	g.event.Payload = g.payload
	g.event.finish(g.clock.Now())

	var failures errorList
	for _, l := range g.listeners {
		failures.call(func() error { return l.event(g.event) })
	}
	return failures.err()
}
