// Package record archives event occurrences for later inspection.
//
// NewRecorder bridges a pulse bus to a Store, so subscribing it turns any
// slice of the event stream into a queryable history:
//
//	store, _ := record.NewSQLiteStore("./events.db")
//	defer store.Close()
//	bus.MustSubscribe(regexp.MustCompile(`^order\.`), record.NewRecorder(store))
package record

import (
	"errors"
	"time"
)

// Record is one archived event occurrence.
type Record struct {
	// ID is assigned by the store on save.
	ID int64

	// Name is the event name the occurrence was published under.
	Name string

	// EventID is the producer's instrumentation id, empty for plain
	// publishes.
	EventID string

	// Start and Finish are the occurrence stamps.
	Start  time.Time
	Finish time.Time

	// Duration is the measured elapsed time.
	Duration time.Duration

	// Error holds the message of the recorded failure, empty on success.
	Error string

	// Payload carries the occurrence payload, minus the "error" value
	// captured above.
	Payload map[string]any
}

// Store archives event records.
// Implementations must be safe for concurrent use.
type Store interface {
	// Save archives one record and assigns its ID.
	Save(rec *Record) error

	// Get retrieves a record by id.
	// Returns ErrNotFound if it doesn't exist.
	Get(id int64) (*Record, error)

	// List returns the records for an event name, newest first, up to
	// limit. A limit <= 0 means no limit. Returns an empty slice (not an
	// error) for an unknown name.
	List(name string, limit int) ([]*Record, error)

	// CountByName returns the number of records per event name.
	CountByName() (map[string]int64, error)

	// DeleteByName removes all records for an event name.
	// Returns nil if the name has no records.
	DeleteByName(name string) error

	// Close releases any resources (connections, files).
	Close() error
}

// Sentinel errors for record operations.
var (
	// ErrNotFound indicates a record doesn't exist.
	ErrNotFound = errors.New("record not found")

	// ErrStoreClosed indicates the store has been closed.
	ErrStoreClosed = errors.New("record store closed")
)
