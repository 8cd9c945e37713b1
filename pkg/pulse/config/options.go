package config

import "time"

// Options wraps a factory's map[string]any options for type-safe value
// extraction. All accessors return the default when the key is missing
// or the value cannot be converted to the requested type.
type Options struct {
	data map[string]any
}

// NewOptions creates Options from the given map.
// A nil map behaves like an empty one.
func NewOptions(data map[string]any) Options {
	if data == nil {
		data = make(map[string]any)
	}
	return Options{data: data}
}

// String returns the string value for key, or defaultVal.
func (o Options) String(key, defaultVal string) string {
	if s, ok := o.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal.
func (o Options) Bool(key string, defaultVal bool) bool {
	if b, ok := o.data[key].(bool); ok {
		return b
	}
	return defaultVal
}

// Int returns the integer value for key, or defaultVal.
// JSON decodes numbers as float64, so whole floats convert too.
func (o Options) Int(key string, defaultVal int) int {
	switch v := o.data[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		if v == float64(int(v)) {
			return int(v)
		}
	}
	return defaultVal
}

// Duration returns the duration value for key, or defaultVal.
// Strings are parsed with time.ParseDuration; numbers count seconds.
func (o Options) Duration(key string, defaultVal time.Duration) time.Duration {
	switch v := o.data[key].(type) {
	case string:
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	case int:
		return time.Duration(v) * time.Second
	case float64:
		return time.Duration(v * float64(time.Second))
	case time.Duration:
		return v
	}
	return defaultVal
}

// Has returns true if the key exists.
func (o Options) Has(key string) bool {
	_, ok := o.data[key]
	return ok
}
