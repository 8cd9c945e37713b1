package observability

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/randalmurphal/pulse/pkg/pulse"
)

// Tracer is the pulse tracer instance.
// Uses the global OTel tracer provider.
var tracer = otel.Tracer("pulse")

// SpanHandler is an evented subscriber that opens a span when an occurrence
// starts and closes it on finish, so instrumented code shows up in traces
// without touching the tracer itself.
//
// Spans sharing an instrumentation id nest: a started occurrence becomes
// the parent of the next one until it finishes. Ids keep separate stacks,
// so concurrent producers never cross wires.
//
// The handler uses the global OTel tracer provider. Configure the provider
// before subscribing:
//
//	otel.SetTracerProvider(yourProvider)
//	bus.MustSubscribe(nil, observability.NewSpanHandler(context.Background()))
type SpanHandler struct {
	base context.Context

	mu     sync.Mutex
	stacks map[string][]spanEntry
}

type spanEntry struct {
	ctx  context.Context
	span trace.Span
	name string
}

// Compile-time interface checks.
var (
	_ pulse.EventedHandler      = (*SpanHandler)(nil)
	_ pulse.EventPublishHandler = (*SpanHandler)(nil)
)

// NewSpanHandler creates a span handler. base is the parent context for
// root spans; pass context.Background() when there is no surrounding trace.
func NewSpanHandler(base context.Context) *SpanHandler {
	if base == nil {
		base = context.Background()
	}
	return &SpanHandler{
		base:   base,
		stacks: make(map[string][]spanEntry),
	}
}

// Start opens a span for the occurrence, parented to the id's innermost
// open span.
func (h *SpanHandler) Start(name, id string, payload pulse.Payload) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	parent := h.base
	if stack := h.stacks[id]; len(stack) > 0 {
		parent = stack[len(stack)-1].ctx
	}
	ctx, span := StartEventSpan(parent, name, id)
	h.stacks[id] = append(h.stacks[id], spanEntry{ctx: ctx, span: span, name: name})
	return nil
}

// Finish closes the id's innermost open span, recording any "error" value
// from the payload. A finish without a matching start is ignored.
func (h *SpanHandler) Finish(name, id string, payload pulse.Payload) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	stack := h.stacks[id]
	if len(stack) == 0 {
		return nil
	}
	entry := stack[len(stack)-1]
	if len(stack) == 1 {
		delete(h.stacks, id)
	} else {
		h.stacks[id] = stack[:len(stack)-1]
	}
	EndEventSpan(entry.span, payloadError(payload))
	return nil
}

// PublishEvent records an already-finished event as a span carrying the
// event's own stamps: the replay path for occurrences observed elsewhere.
func (h *SpanHandler) PublishEvent(e *pulse.Event) error {
	_, span := tracer.Start(h.base, e.Name,
		trace.WithAttributes(
			attribute.String("event.name", e.Name),
			attribute.String("instrumentation.id", e.ID),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithTimestamp(e.Time()),
	)
	if err := payloadError(e.Payload); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End(trace.WithTimestamp(e.End()))
	return nil
}

// Convenience functions that operate on the global tracer.
// These are useful for bracketing work manually, outside a bus.

// StartEventSpan starts a span for one event occurrence.
// Uses the global OTel tracer.
func StartEventSpan(ctx context.Context, name, id string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("event.name", name),
			attribute.String("instrumentation.id", id),
		),
		trace.WithSpanKind(trace.SpanKindInternal),
	)
}

// EndEventSpan completes a span, optionally recording an error.
func EndEventSpan(span trace.Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
