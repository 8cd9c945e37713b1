package pulse

import (
	"runtime/debug"

	"github.com/google/uuid"
)

// Instrumenter is the producer front end for one instrumentation source.
// Every occurrence it emits carries the same generated id, correlating the
// events of a single producer across subscribers.
//
// Instrumenters are cheap and safe for concurrent use; create one per
// logical producer.
type Instrumenter struct {
	bus *Bus
	id  string
}

// NewInstrumenter creates an instrumenter for bus with a fresh correlation
// id.
func NewInstrumenter(bus *Bus) *Instrumenter {
	return &Instrumenter{bus: bus, id: uuid.New().String()}
}

// ID returns the correlation id stamped on every occurrence.
func (i *Instrumenter) ID() string { return i.id }

// BuildHandle prepares a two-phase occurrence of name carrying the
// instrumenter's id. The caller owns the Start/Finish sequencing.
func (i *Instrumenter) BuildHandle(name string, payload Payload) *Handle {
	return i.bus.GetHandle(name, i.id, payload)
}

// Instrument surrounds fn with the start and finish phases of one
// occurrence. A non-nil error from fn is stored in the payload under
// "error" and returned after the finish phase runs; when fn succeeds but a
// finish subscriber fails, that dispatch error is returned instead. If fn
// panics, a *PanicError is recorded in the payload, the finish phase still
// runs, and the panic resumes.
func (i *Instrumenter) Instrument(name string, payload Payload, fn func(Payload) error) (err error) {
	if payload == nil {
		payload = Payload{}
	}
	h := i.bus.GetHandle(name, i.id, payload)
	if err := h.Start(); err != nil {
		return err
	}

	defer func() {
		if r := recover(); r != nil {
			payload["error"] = &PanicError{Value: r, Stack: string(debug.Stack())}
			h.Finish()
			panic(r)
		}
		if err != nil {
			payload["error"] = err
		}
		if ferr := h.Finish(); err == nil {
			err = ferr
		}
	}()
	return fn(payload)
}
