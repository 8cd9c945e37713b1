package config

import (
	"fmt"
	"regexp"
	"strings"
)

// Config declares a set of bus subscribers.
type Config struct {
	Subscribers []SubscriberConfig `yaml:"subscribers" json:"subscribers"`
}

// SubscriberConfig declares one subscriber.
type SubscriberConfig struct {
	// Kind names a handler factory registered in the registry.
	Kind string `yaml:"kind" json:"kind"`

	// Pattern selects event names. Three forms are recognized:
	// an exact name, a /slash-delimited/ regular expression, or an
	// empty string for every event.
	Pattern string `yaml:"pattern" json:"pattern"`

	// Monotonic requests monotonic timing for timed handlers.
	Monotonic bool `yaml:"monotonic" json:"monotonic"`

	// Options are passed through to the handler factory.
	Options map[string]any `yaml:"options" json:"options"`
}

// ParsePattern converts a pattern string into a subscribe pattern.
//
//   - "" subscribes to every event name
//   - "/expr/" compiles expr as a regular expression
//   - anything else matches the event name exactly
func ParsePattern(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	if len(s) >= 2 && strings.HasPrefix(s, "/") && strings.HasSuffix(s, "/") {
		re, err := regexp.Compile(s[1 : len(s)-1])
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", s, err)
		}
		return re, nil
	}
	return s, nil
}

// Validate checks the configuration for structural problems.
func (c *Config) Validate() error {
	for i, sub := range c.Subscribers {
		if sub.Kind == "" {
			return fmt.Errorf("subscriber %d: kind is required", i)
		}
		if _, err := ParsePattern(sub.Pattern); err != nil {
			return fmt.Errorf("subscriber %d: %w", i, err)
		}
	}
	return nil
}
