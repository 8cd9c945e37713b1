package pulse

import (
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
)

// Sentinel errors for subscription.
var (
	// ErrInvalidPattern indicates Subscribe was called with a pattern that
	// is not a string, a *regexp.Regexp, or nil.
	ErrInvalidPattern = errors.New("invalid subscription pattern")

	// ErrInvalidHandler indicates Subscribe was called with a handler that
	// matches none of the supported forms.
	ErrInvalidHandler = errors.New("invalid subscriber handler")
)

// AggregateError collects the failures of two or more subscribers notified
// during the same dispatch pass. Errors preserves invocation order and
// Errors[0] is the proximate cause. A pass with exactly one failure returns
// that error unchanged instead of wrapping it.
type AggregateError struct {
	// Errors holds the underlying failures in the order they occurred.
	Errors []error
}

// Error implements the error interface.
func (e *AggregateError) Error() string {
	if len(e.Errors) == 0 {
		return "no subscriber failures"
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d subscribers failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap returns the underlying errors for errors.Is/As support.
func (e *AggregateError) Unwrap() []error {
	return e.Errors
}

// PanicError captures a panic raised by a subscriber during dispatch. The
// panic is recovered so the remaining subscribers still run; the error takes
// the panicking subscriber's place in the dispatch result.
type PanicError struct {
	// Value is the value passed to panic().
	Value any
	// Stack is the full stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("subscriber panicked: %v", e.Value)
}

// errorList accumulates failures across one dispatch pass. Every listener
// is attempted; the decision between pass-through and aggregation is made
// once, after the loop.
type errorList struct {
	errs []error
}

// call invokes fn and records its failure, converting a panic into a
// *PanicError so the pass can continue.
func (l *errorList) call(fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			l.errs = append(l.errs, &PanicError{Value: r, Stack: string(debug.Stack())})
		}
	}()
	if err := fn(); err != nil {
		l.errs = append(l.errs, err)
	}
}

// err returns nil when no failures occurred, the failure itself when
// exactly one did, and an *AggregateError otherwise.
func (l *errorList) err() error {
	switch len(l.errs) {
	case 0:
		return nil
	case 1:
		return l.errs[0]
	default:
		return &AggregateError{Errors: l.errs}
	}
}
