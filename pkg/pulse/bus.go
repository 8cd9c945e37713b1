package pulse

import (
	"log/slog"
	"sync"
)

// Bus is the fan-out dispatcher. It owns the subscription tables, the
// per-name listener cache, and the single lock serializing mutation. Buses
// are explicit values: create one per process (or per test) with NewBus and
// hand it to producers and subscribers.
//
// All methods are safe for concurrent use. Dispatch runs outside the lock,
// so a slow subscriber never blocks Subscribe, Unsubscribe, or other
// publishers.
type Bus struct {
	mu       sync.Mutex
	exact    map[string][]*Subscriber
	patterns []*Subscriber

	// cache maps event name to an immutable []*Subscriber snapshot.
	// Entries are replaced whole; readers never take mu on a hit.
	cache sync.Map

	clock  Clock
	logger *slog.Logger
}

// NewBus creates an empty bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{
		exact:  make(map[string][]*Subscriber),
		clock:  systemClock{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscribe registers handler for every event name accepted by pattern.
//
// pattern may be a string (one exact name), a *regexp.Regexp (any name it
// accepts), or nil (all names); anything else fails with ErrInvalidPattern.
// handler must be a TimedFunc, an EventFunc, or an EventedHandler;
// anything else fails with ErrInvalidHandler. The handler's dispatch
// discipline is fixed here and never re-derived.
//
// The returned Subscriber identifies the subscription for Unsubscribe.
func (b *Bus) Subscribe(pattern, handler any, opts ...SubscribeOption) (*Subscriber, error) {
	var cfg subscribeConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	m, err := newMatcher(pattern)
	if err != nil {
		return nil, err
	}
	sub, err := newSubscriber(m, handler, cfg.monotonic)
	if err != nil {
		return nil, err
	}

	b.mu.Lock()
	if m.kind == matchExact {
		b.exact[m.name] = append(b.exact[m.name], sub)
		b.cache.Delete(m.name)
	} else {
		b.patterns = append(b.patterns, sub)
		// A pattern subscriber can match any name.
		b.cache.Clear()
	}
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug("subscriber added",
			slog.String("discipline", sub.disc.String()),
			slog.Any("pattern", pattern),
		)
	}
	return sub, nil
}

// MustSubscribe is Subscribe panicking on error, for wiring done at
// program start.
func (b *Bus) MustSubscribe(pattern, handler any, opts ...SubscribeOption) *Subscriber {
	sub, err := b.Subscribe(pattern, handler, opts...)
	if err != nil {
		panic(err)
	}
	return sub
}

// Unsubscribe removes a subscription. target may be:
//
//   - a *Subscriber returned by Subscribe, which is removed from whichever
//     table holds it; or
//   - a string event name, which drops every exact subscriber for that name
//     and excludes the name from every pattern subscriber, silencing
//     generically registered listeners for that one name without removing
//     them.
//
// Unsubscribe is idempotent: unknown targets and repeat calls are no-ops.
func (b *Bus) Unsubscribe(target any) {
	switch t := target.(type) {
	case string:
		b.unsubscribeName(t)
	case *Subscriber:
		if t != nil {
			b.unsubscribeSubscriber(t)
		}
	}
}

func (b *Bus) unsubscribeName(name string) {
	b.mu.Lock()
	delete(b.exact, name)
	for _, sub := range b.patterns {
		sub.exclude(name)
	}
	b.cache.Delete(name)
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug("event name unsubscribed", slog.String("event", name))
	}
}

func (b *Bus) unsubscribeSubscriber(sub *Subscriber) {
	b.mu.Lock()
	if sub.matcher.kind == matchExact {
		name := sub.matcher.name
		b.exact[name] = removeSubscriber(b.exact[name], sub)
		if len(b.exact[name]) == 0 {
			delete(b.exact, name)
		}
		b.cache.Delete(name)
	} else {
		b.patterns = removeSubscriber(b.patterns, sub)
		// The subscriber may be cached under any name.
		b.cache.Clear()
	}
	b.mu.Unlock()

	if b.logger != nil {
		b.logger.Debug("subscriber removed", slog.String("discipline", sub.disc.String()))
	}
}

// removeSubscriber returns subs without target, preserving order.
func removeSubscriber(subs []*Subscriber, target *Subscriber) []*Subscriber {
	for i, s := range subs {
		if s == target {
			return append(subs[:i], subs[i+1:]...)
		}
	}
	return subs
}

// listenersFor resolves the ordered subscriber snapshot for name: exact
// subscribers first, then matching pattern subscribers, each in
// registration order. The cache is consulted without the lock; on a miss
// the snapshot is computed under the lock, rechecking first so concurrent
// misses for one name compute it once.
func (b *Bus) listenersFor(name string) []*Subscriber {
	// Fast path: cached snapshot.
	if cached, ok := b.cache.Load(name); ok {
		return cached.([]*Subscriber)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	// Double-check after acquiring the lock.
	if cached, ok := b.cache.Load(name); ok {
		return cached.([]*Subscriber)
	}

	exact := b.exact[name]
	listeners := make([]*Subscriber, 0, len(exact)+len(b.patterns))
	listeners = append(listeners, exact...)
	for _, sub := range b.patterns {
		if sub.matcher.matches(name) {
			listeners = append(listeners, sub)
		}
	}
	b.cache.Store(name, listeners)
	return listeners
}

// Listening reports whether at least one subscriber matches name.
func (b *Bus) Listening(name string) bool {
	return len(b.listenersFor(name)) > 0
}

// Publish announces a single-phase occurrence of name to every matching
// subscriber. Timed subscribers observe an empty interval stamped at the
// time of the call, event-object subscribers receive an instantaneous
// finished event, and evented subscribers are notified only when their
// handler has a Publish capability.
//
// Every subscriber is attempted. With exactly one failure that error is
// returned unchanged; with more, an *AggregateError carries them all in
// invocation order.
func (b *Bus) Publish(name string, payload Payload) error {
	if payload == nil {
		payload = Payload{}
	}
	var failures errorList
	for _, sub := range b.listenersFor(name) {
		failures.call(func() error { return sub.publish(b.clock, name, payload) })
	}
	return failures.err()
}

// PublishEvent announces a caller-built event, preserving its stamps and
// id. This is the replay path for occurrences observed elsewhere. Error
// semantics match Publish.
func (b *Bus) PublishEvent(e *Event) error {
	if e.Payload == nil {
		e.Payload = Payload{}
	}
	var failures errorList
	for _, sub := range b.listenersFor(e.Name) {
		failures.call(func() error { return sub.publishEvent(e) })
	}
	return failures.err()
}

// GetHandle prepares the two-phase path for one occurrence of name. The
// matching subscribers are resolved and grouped once; Handle.Start and
// Handle.Finish then fan each phase out. id correlates the occurrence with
// its producer and payload is shared with every subscriber.
func (b *Bus) GetHandle(name, id string, payload Payload) *Handle {
	if payload == nil {
		payload = Payload{}
	}
	return newHandle(b, name, id, payload)
}
