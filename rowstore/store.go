package rowstore

import (
	"context"
	"errors"

	"github.com/hupe1980/rowmap/model"
)

var (
	// ErrNotFound is returned when a Store cannot find a key.
	ErrNotFound = errors.New("not found")

	// ErrInvalidKey is returned for an empty key.
	ErrInvalidKey = errors.New("invalid key")
)

// Range describes a contiguous key range: Start inclusive, End exclusive.
// The zero value covers the full keyspace; an empty End means unbounded.
type Range struct {
	Start model.Key
	End   model.Key
}

// Contains reports whether the key falls inside the range.
func (r Range) Contains(key model.Key) bool {
	if key < r.Start {
		return false
	}
	return r.End == "" || key < r.End
}

// Store is the key-value substrate records live in.
//
// Keys are ordered by lexicographic byte comparison. Scan visits records
// in ascending key order. Implementations must be safe for concurrent
// readers so that a single handle can be shared across export workers;
// writes during an export are outside the contract.
type Store interface {
	// Get returns the row stored under key, or ErrNotFound.
	Get(ctx context.Context, key model.Key) (*model.Row, error)

	// Put stores the row under key, replacing any previous row.
	// The store keeps its own copy; the caller may reuse the row.
	Put(ctx context.Context, key model.Key, row *model.Row) error

	// Delete removes the row stored under key, or returns ErrNotFound.
	Delete(ctx context.Context, key model.Key) error

	// Count returns the number of stored rows.
	Count(ctx context.Context) (uint64, error)

	// Keys returns a sorted snapshot of all keys.
	Keys(ctx context.Context) ([]model.Key, error)

	// Scan visits all rows with keys in r, in ascending key order.
	// A non-nil error from fn aborts the scan and is returned verbatim.
	Scan(ctx context.Context, r Range, fn func(key model.Key, row *model.Row) error) error
}
