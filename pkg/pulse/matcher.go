package pulse

import (
	"fmt"
	"regexp"
	"sync"
)

// matchKind identifies the pattern form a matcher wraps.
type matchKind int

const (
	matchExact matchKind = iota
	matchRegexp
	matchAll
)

// matcher pairs a subscription pattern with the set of names that were
// individually unsubscribed from it. A name matches when the pattern
// accepts it and it has not been excluded.
type matcher struct {
	kind matchKind
	name string         // exact patterns
	re   *regexp.Regexp // regexp patterns

	mu       sync.RWMutex
	excluded map[string]struct{}
}

// newMatcher wraps pattern. Accepted forms: a string matching exactly one
// name, a *regexp.Regexp matching any name it accepts, or nil matching all
// names.
func newMatcher(pattern any) (*matcher, error) {
	switch p := pattern.(type) {
	case nil:
		return &matcher{kind: matchAll}, nil
	case string:
		return &matcher{kind: matchExact, name: p}, nil
	case *regexp.Regexp:
		if p == nil {
			return &matcher{kind: matchAll}, nil
		}
		return &matcher{kind: matchRegexp, re: p}, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrInvalidPattern, pattern)
	}
}

// matches reports whether name is accepted by the pattern and not excluded.
func (m *matcher) matches(name string) bool {
	switch m.kind {
	case matchExact:
		if m.name != name {
			return false
		}
	case matchRegexp:
		if !m.re.MatchString(name) {
			return false
		}
	}
	m.mu.RLock()
	_, skip := m.excluded[name]
	m.mu.RUnlock()
	return !skip
}

// exclude removes name from the set of names this matcher accepts. The
// rest of the pattern is unaffected and excluding twice is a no-op.
func (m *matcher) exclude(name string) {
	m.mu.Lock()
	if m.excluded == nil {
		m.excluded = make(map[string]struct{})
	}
	m.excluded[name] = struct{}{}
	m.mu.Unlock()
}

// pattern returns the value the matcher was built from.
func (m *matcher) pattern() any {
	switch m.kind {
	case matchExact:
		return m.name
	case matchRegexp:
		return m.re
	default:
		return nil
	}
}
