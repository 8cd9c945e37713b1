package pulse_test

import (
	"testing"
	"time"

	"github.com/randalmurphal/pulse/pkg/pulse"
)

func TestNewEvent(t *testing.T) {
	e := pulse.NewEvent("cache.read", "id-3", nil)

	if e.Name != "cache.read" || e.ID != "id-3" {
		t.Errorf("expected name and id set, got %q %q", e.Name, e.ID)
	}
	if e.Payload == nil {
		t.Error("expected nil payload replaced with an empty one")
	}
	if e.Started() || e.Finished() {
		t.Error("expected a fresh event to be unstarted")
	}
}

func TestEventStamps(t *testing.T) {
	e := pulse.NewEvent("cache.read", "", pulse.Payload{})

	e.Start()
	if !e.Started() {
		t.Error("expected Started after Start")
	}
	if e.Finished() {
		t.Error("expected not Finished before Finish")
	}

	time.Sleep(time.Millisecond)
	e.Finish()
	if !e.Finished() {
		t.Error("expected Finished after Finish")
	}
	if e.Duration() <= 0 {
		t.Errorf("expected positive duration, got %s", e.Duration())
	}
	if !e.End().After(e.Time()) {
		t.Error("expected End after Time")
	}
}

func TestEventRecord(t *testing.T) {
	e := pulse.NewEvent("work.unit", "", pulse.Payload{})

	err := e.Record(func() error {
		time.Sleep(time.Millisecond)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !e.Started() || !e.Finished() {
		t.Error("expected both stamps set by Record")
	}
	if _, ok := e.Payload["error"]; ok {
		t.Error("expected no error recorded on success")
	}
}

func TestEventRecordError(t *testing.T) {
	e := pulse.NewEvent("work.unit", "", pulse.Payload{})

	err := e.Record(func() error { return errBoom })
	if err != errBoom {
		t.Fatalf("expected the error returned unchanged, got %v", err)
	}
	if e.Payload["error"] != errBoom {
		t.Errorf("expected the error recorded in the payload, got %v", e.Payload["error"])
	}
	if !e.Finished() {
		t.Error("expected the event finished despite the error")
	}
}

func TestEventRecordFinishesOnPanic(t *testing.T) {
	e := pulse.NewEvent("work.unit", "", pulse.Payload{})

	func() {
		defer func() {
			if r := recover(); r == nil {
				t.Error("expected the panic to propagate")
			}
		}()
		e.Record(func() error { panic("boom") })
	}()

	if !e.Finished() {
		t.Error("expected the event finished despite the panic")
	}
}
