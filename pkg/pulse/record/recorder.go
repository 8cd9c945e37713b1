package record

import (
	"github.com/randalmurphal/pulse/pkg/pulse"
)

// NewRecorder creates an event handler that persists each finished
// occurrence to the given store.
//
// The handler receives the finished event object, so the record carries
// both timestamps and the measured duration. An "error" value in the
// payload is captured into the record's Error field and removed from the
// persisted payload. Save failures propagate through the bus error
// contract like any other subscriber failure.
func NewRecorder(store Store) pulse.EventFunc {
	return func(e *pulse.Event) error {
		rec := &Record{
			Name:     e.Name,
			EventID:  e.ID,
			Start:    e.Time(),
			Finish:   e.End(),
			Duration: e.Duration(),
		}

		if len(e.Payload) > 0 {
			rec.Payload = make(map[string]any, len(e.Payload))
			for k, v := range e.Payload {
				if k == "error" {
					if err, ok := v.(error); ok {
						rec.Error = err.Error()
						continue
					}
				}
				rec.Payload[k] = v
			}
		}

		return store.Save(rec)
	}
}
