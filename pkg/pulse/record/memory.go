package record

import "sync"

// MemoryStore is an in-memory record store for testing.
// Data is lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
	nextID  int64
	closed  bool
}

// NewMemoryStore creates a new in-memory record store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements Store.
func (m *MemoryStore) Save(rec *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.nextID++
	rec.ID = m.nextID

	stored := *rec
	stored.Payload = clonePayload(rec.Payload)
	m.records = append(m.records, stored)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(id int64) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	for i := range m.records {
		if m.records[i].ID == id {
			return copyRecord(&m.records[i]), nil
		}
	}
	return nil, ErrNotFound
}

// List implements Store.
func (m *MemoryStore) List(name string, limit int) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	result := make([]*Record, 0)
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].Name != name {
			continue
		}
		result = append(result, copyRecord(&m.records[i]))
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// CountByName implements Store.
func (m *MemoryStore) CountByName() (map[string]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	counts := make(map[string]int64)
	for i := range m.records {
		counts[m.records[i].Name]++
	}
	return counts, nil
}

// DeleteByName implements Store.
func (m *MemoryStore) DeleteByName(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	kept := m.records[:0]
	for i := range m.records {
		if m.records[i].Name != name {
			kept = append(kept, m.records[i])
		}
	}
	m.records = kept
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.records = nil
	return nil
}

// Len returns the total number of records.
// Useful for testing.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}

// copyRecord returns a copy decoupled from the stored one.
func copyRecord(rec *Record) *Record {
	out := *rec
	out.Payload = clonePayload(rec.Payload)
	return &out
}

// clonePayload shallow-copies a payload map.
func clonePayload(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	c := make(map[string]any, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}
