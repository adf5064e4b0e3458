package export

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreAccess indicates a failed read against the backing store.
	ErrStoreAccess = errors.New("store access failed")

	// ErrEncoding indicates a record value that cannot be CSV-encoded
	// (e.g. not valid UTF-8). Malformed rows are errors, not skipped rows.
	ErrEncoding = errors.New("row not CSV-encodable")

	// ErrMergeIO indicates a failure writing or committing the output file.
	ErrMergeIO = errors.New("output file write failed")
)

// WorkerError wraps any worker-local failure together with the chunk the
// worker owned. The underlying error can be accessed via errors.Unwrap.
type WorkerError struct {
	Chunk int
	cause error
}

func (e *WorkerError) Error() string {
	return fmt.Sprintf("worker for chunk %d failed: %v", e.Chunk, e.cause)
}

func (e *WorkerError) Unwrap() error { return e.cause }
