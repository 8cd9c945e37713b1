package pulse_test

import (
	"regexp"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/randalmurphal/pulse/pkg/pulse"
)

// fakeClock is a manually advanced Clock.
type fakeClock struct {
	mu   sync.Mutex
	wall time.Time
	mono time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{wall: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wall
}

func (c *fakeClock) Monotonic() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mono
}

// advance moves both clocks forward.
func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.wall = c.wall.Add(d)
	c.mono += d
	c.mu.Unlock()
}

// jumpWall shifts only the wall clock, simulating an adjustment.
func (c *fakeClock) jumpWall(d time.Duration) {
	c.mu.Lock()
	c.wall = c.wall.Add(d)
	c.mu.Unlock()
}

// countingEvented counts the calls of each phase.
type countingEvented struct {
	starts, finishes atomic.Int32
}

func (c *countingEvented) Start(name, id string, payload pulse.Payload) error {
	c.starts.Add(1)
	return nil
}

func (c *countingEvented) Finish(name, id string, payload pulse.Payload) error {
	c.finishes.Add(1)
	return nil
}

// publishableEvented additionally accepts single-phase publishes.
type publishableEvented struct {
	countingEvented
	published atomic.Int32
}

func (p *publishableEvented) Publish(name string, payload pulse.Payload) error {
	p.published.Add(1)
	return nil
}

func TestSubscriberDiscipline(t *testing.T) {
	bus := pulse.NewBus()

	tests := []struct {
		name    string
		handler any
		opts    []pulse.SubscribeOption
		want    pulse.Discipline
	}{
		{
			name:    "timed func type",
			handler: pulse.TimedFunc(timedNop),
			want:    pulse.DisciplineTimed,
		},
		{
			name: "bare timed func",
			handler: func(name string, start, finish time.Time, id string, payload pulse.Payload) error {
				return nil
			},
			want: pulse.DisciplineTimed,
		},
		{
			name:    "timed func with monotonic option",
			handler: pulse.TimedFunc(timedNop),
			opts:    []pulse.SubscribeOption{pulse.WithMonotonic()},
			want:    pulse.DisciplineMonotonicTimed,
		},
		{
			name:    "event func type",
			handler: pulse.EventFunc(func(e *pulse.Event) error { return nil }),
			want:    pulse.DisciplineEventObject,
		},
		{
			name:    "bare event func",
			handler: func(e *pulse.Event) error { return nil },
			want:    pulse.DisciplineEventObject,
		},
		{
			name:    "evented handler",
			handler: &countingEvented{},
			want:    pulse.DisciplineEvented,
		},
		{
			name:    "evented handler ignores monotonic option",
			handler: &countingEvented{},
			opts:    []pulse.SubscribeOption{pulse.WithMonotonic()},
			want:    pulse.DisciplineEvented,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub, err := bus.Subscribe("discipline.test", tt.handler, tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sub.Discipline() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, sub.Discipline())
			}
		})
	}
}

func TestDisciplineString(t *testing.T) {
	names := map[pulse.Discipline]string{
		pulse.DisciplineTimed:          "timed",
		pulse.DisciplineMonotonicTimed: "monotonic_timed",
		pulse.DisciplineEvented:        "evented",
		pulse.DisciplineEventObject:    "event_object",
	}
	for d, want := range names {
		if d.String() != want {
			t.Errorf("expected %q, got %q", want, d.String())
		}
	}
}

func TestSubscriberAccessors(t *testing.T) {
	bus := pulse.NewBus()

	re := regexp.MustCompile(`^db\.`)
	sub := bus.MustSubscribe(re, timedNop)

	if !sub.Matches("db.query") {
		t.Error("expected db.query to match")
	}
	if sub.Matches("cache.hit") {
		t.Error("expected cache.hit not to match")
	}
	if sub.Pattern() != re {
		t.Errorf("expected the original pattern back, got %v", sub.Pattern())
	}

	exact := bus.MustSubscribe("db.query", timedNop)
	if exact.Pattern() != "db.query" {
		t.Errorf("expected string pattern back, got %v", exact.Pattern())
	}

	all := bus.MustSubscribe(nil, timedNop)
	if all.Pattern() != nil {
		t.Errorf("expected nil pattern back, got %v", all.Pattern())
	}
	if !all.Matches("anything.at.all") {
		t.Error("expected catch-all to match any name")
	}
}

func TestSubscriberMatchesReflectsExclusion(t *testing.T) {
	bus := pulse.NewBus()

	sub := bus.MustSubscribe(regexp.MustCompile(`^user\.`), timedNop)
	if !sub.Matches("user.created") {
		t.Fatal("expected user.created to match before exclusion")
	}

	bus.Unsubscribe("user.created")

	if sub.Matches("user.created") {
		t.Error("expected user.created excluded after name unsubscribe")
	}
	if !sub.Matches("user.updated") {
		t.Error("expected user.updated still matching")
	}
}

func TestEventedReceivesBothPhases(t *testing.T) {
	bus := pulse.NewBus()

	ev := &countingEvented{}
	bus.MustSubscribe("work.unit", ev)

	h := bus.GetHandle("work.unit", "id-1", nil)
	if err := h.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.starts.Load() != 1 || ev.finishes.Load() != 0 {
		t.Errorf("expected 1 start and 0 finishes, got %d and %d", ev.starts.Load(), ev.finishes.Load())
	}
	if err := h.Finish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ev.starts.Load() != 1 || ev.finishes.Load() != 1 {
		t.Errorf("expected 1 start and 1 finish, got %d and %d", ev.starts.Load(), ev.finishes.Load())
	}
}

func TestEventedPublishCapability(t *testing.T) {
	bus := pulse.NewBus()

	plain := &countingEvented{}
	capable := &publishableEvented{}
	bus.MustSubscribe("signal.fire", plain)
	bus.MustSubscribe("signal.fire", capable)

	if err := bus.Publish("signal.fire", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Single-phase publishes only reach evented handlers that opted in.
	if plain.starts.Load() != 0 || plain.finishes.Load() != 0 {
		t.Error("expected plain evented handler to be skipped on publish")
	}
	if capable.published.Load() != 1 {
		t.Errorf("expected 1 publish delivery, got %d", capable.published.Load())
	}
	if capable.starts.Load() != 0 {
		t.Error("expected no start call on the publish path")
	}
}

func TestEventObjectReceivesFinishedEvent(t *testing.T) {
	bus := pulse.NewBus()

	var got *pulse.Event
	bus.MustSubscribe("query.sql", pulse.EventFunc(func(e *pulse.Event) error {
		got = e
		return nil
	}))

	payload := pulse.Payload{"sql": "SELECT 1"}
	h := bus.GetHandle("query.sql", "id-9", payload)
	if err := h.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := h.Finish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got == nil {
		t.Fatal("expected an event")
	}
	if got.Name != "query.sql" || got.ID != "id-9" {
		t.Errorf("expected name and id carried over, got %q %q", got.Name, got.ID)
	}
	if got.Payload["sql"] != "SELECT 1" {
		t.Errorf("expected payload carried over, got %v", got.Payload)
	}
	if !got.Started() || !got.Finished() {
		t.Error("expected both stamps set")
	}
	if got.Duration() < 0 {
		t.Errorf("expected non-negative duration, got %s", got.Duration())
	}
}

func TestMonotonicTimedSurvivesWallClockJump(t *testing.T) {
	clk := newFakeClock()
	bus := pulse.NewBus(pulse.WithClock(clk))

	var wallElapsed, monoElapsed time.Duration
	bus.MustSubscribe("job.run", pulse.TimedFunc(
		func(name string, start, finish time.Time, id string, payload pulse.Payload) error {
			wallElapsed = finish.Sub(start)
			return nil
		}))
	bus.MustSubscribe("job.run", pulse.TimedFunc(
		func(name string, start, finish time.Time, id string, payload pulse.Payload) error {
			monoElapsed = finish.Sub(start)
			return nil
		}), pulse.WithMonotonic())

	h := bus.GetHandle("job.run", "", nil)
	if err := h.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	clk.advance(100 * time.Millisecond)
	clk.jumpWall(-1 * time.Hour) // clock correction mid-measurement
	if err := h.Finish(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if monoElapsed != 100*time.Millisecond {
		t.Errorf("expected monotonic elapsed 100ms, got %s", monoElapsed)
	}
	if wallElapsed >= 0 {
		t.Errorf("expected wall-clock elapsed to go negative after the jump, got %s", wallElapsed)
	}
}
