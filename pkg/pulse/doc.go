/*
Package pulse provides an in-process instrumentation bus: synchronous
publish/subscribe over named events.

# Overview

pulse lets code announce named events ("user.created", "query.sql") and lets
any number of subscribers observe them, timed, without the two sides knowing
about each other. Delivery is synchronous and in-process: publishing returns
after every matching subscriber ran, on the publisher's goroutine.

The model follows the fan-out notification pattern popularized by web
framework instrumentation layers, built for Go with:
  - Explicit bus values instead of a process-global singleton
  - Dispatch disciplines fixed at subscribe time, not probed per event
  - Lock-free listener resolution on the hot path via cached snapshots
  - OpenTelemetry integration for observability

# Basic Usage

Create a bus, subscribe, and instrument work:

	bus := pulse.NewBus()

	bus.MustSubscribe("order.placed", pulse.TimedFunc(
	    func(name string, start, finish time.Time, id string, payload pulse.Payload) error {
	        log.Printf("%s took %s", name, finish.Sub(start))
	        return nil
	    }))

	inst := pulse.NewInstrumenter(bus)
	err := inst.Instrument("order.placed", pulse.Payload{"order_id": 42},
	    func(p pulse.Payload) error {
	        return placeOrder()
	    })

Instrument stamps the start, runs the function, stamps the finish, and
notifies every matching subscriber with both stamps. An error or panic from
the function lands in the payload under "error" before the finish phase runs.

# Subscription Patterns

Subscribe accepts three pattern forms:

	bus.Subscribe("user.created", handler)            // one exact name
	bus.Subscribe(regexp.MustCompile(`^user\.`), handler) // any matching name
	bus.Subscribe(nil, handler)                       // every name

Exact subscribers always run before pattern subscribers; within each camp,
registration order is preserved. Unsubscribing by name drops the exact
subscribers for that name and excludes the name from every pattern
subscriber, so a broad pattern can be silenced for one event without
removing it:

	bus.MustSubscribe(regexp.MustCompile(`^user\.`), handler)
	bus.Unsubscribe("user.created") // handler still sees user.updated

# Dispatch Disciplines

The handler's form decides how it is called, once, at subscribe time:

  - TimedFunc: one call per occurrence with wall-clock start/finish stamps
  - TimedFunc + WithMonotonic(): stamps from the monotonic clock, immune to
    wall-clock adjustments
  - EventFunc: one call per occurrence with a finished *Event
  - EventedHandler (Start/Finish methods): two calls per occurrence, one at
    each phase

An EventedHandler may additionally implement PublishHandler or
EventPublishHandler to observe the single-phase Publish and PublishEvent
paths.

# Two-Phase Occurrences

Instrumenter.Instrument covers the common case. For explicit control, get a
handle and bracket the work yourself:

	h := bus.GetHandle("job.run", id, payload)
	must(h.Start())
	doWork()
	must(h.Finish())

The subscriber set is resolved once when the handle is built, so
subscription changes between Start and Finish never unbalance an occurrence.

# Error Handling

Subscriber failures never short-circuit a dispatch pass: every listener is
attempted. With exactly one failure the error is returned as-is, so
errors.Is and errors.As keep working on it. With several, an
*AggregateError carries them in invocation order:

	var agg *pulse.AggregateError
	if errors.As(err, &agg) {
	    log.Printf("first of %d failures: %v", len(agg.Errors), agg.Errors[0])
	}

Panics in subscribers are recovered and folded in as *PanicError with the
stack trace.

# Thread Safety

  - Bus IS safe for concurrent use; one mutex guards mutation and dispatch
    runs outside it
  - Subscriber and Event values delivered to handlers are shared; handlers
    mutating a payload must coordinate among themselves
  - Handle is single-use and NOT safe for concurrent use
  - Instrumenter IS safe for concurrent use

# Subpackages

  - observability: ready-made log, metrics, and trace subscribers
  - record: event persistence (memory, SQLite)
  - config: declarative subscriber wiring from YAML
  - registry: named subscriber factories used by config
*/
package pulse
