package config

import (
	"fmt"

	"github.com/randalmurphal/pulse/pkg/pulse"
	"github.com/randalmurphal/pulse/pkg/pulse/registry"
)

// Apply builds and subscribes every configured subscriber on the bus.
//
// Handler factories are resolved through reg. Subscribers attach in
// declaration order. On failure the subscribers attached so far stay on
// the bus and the error names the failing entry.
func Apply(cfg *Config, bus *pulse.Bus, reg *registry.Registry) ([]*pulse.Subscriber, error) {
	subs := make([]*pulse.Subscriber, 0, len(cfg.Subscribers))
	for i, sc := range cfg.Subscribers {
		pattern, err := ParsePattern(sc.Pattern)
		if err != nil {
			return subs, fmt.Errorf("subscriber %d: %w", i, err)
		}

		handler, err := reg.Build(sc.Kind, sc.Options)
		if err != nil {
			return subs, fmt.Errorf("subscriber %d: %w", i, err)
		}

		var opts []pulse.SubscribeOption
		if sc.Monotonic {
			opts = append(opts, pulse.WithMonotonic())
		}

		sub, err := bus.Subscribe(pattern, handler, opts...)
		if err != nil {
			return subs, fmt.Errorf("subscriber %d (%s): %w", i, sc.Kind, err)
		}
		subs = append(subs, sub)
	}
	return subs, nil
}
