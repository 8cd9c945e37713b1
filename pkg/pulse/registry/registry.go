// Package registry manages named handler factories.
//
// Factories build bus handlers from configuration options, so subscriber
// sets can be declared in config files instead of code. The config
// package resolves each configured subscriber's kind through a registry.
//
// Common use cases:
//   - Attach the built-in log/metrics/trace handlers by name
//   - Expose application handlers to operators via config
//   - Swap handler implementations per environment
package registry

import (
	"errors"
	"fmt"
	"sync"
)

// Factory builds a bus handler from configuration options.
// The returned value must be a handler form accepted by Bus.Subscribe.
type Factory func(opts map[string]any) (any, error)

// Registry manages handler factories by kind.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates a new factory registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory for a handler kind.
func (r *Registry) Register(kind string, factory Factory) error {
	if kind == "" {
		return errors.New("handler kind is required")
	}
	if factory == nil {
		return errors.New("factory is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("factory for kind %q already registered", kind)
	}

	r.factories[kind] = factory
	return nil
}

// MustRegister registers a factory, panicking on error.
func (r *Registry) MustRegister(kind string, factory Factory) {
	if err := r.Register(kind, factory); err != nil {
		panic(err)
	}
}

// Get returns the factory for a handler kind.
func (r *Registry) Get(kind string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	factory, exists := r.factories[kind]
	return factory, exists
}

// List returns all registered kinds.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Unregister removes a factory for a handler kind.
func (r *Registry) Unregister(kind string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, kind)
}

// ErrUnknownKind is returned when no factory exists for a kind.
var ErrUnknownKind = errors.New("unknown handler kind")

// Build resolves a kind and invokes its factory with opts.
func (r *Registry) Build(kind string, opts map[string]any) (any, error) {
	factory, exists := r.Get(kind)
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return factory(opts)
}
