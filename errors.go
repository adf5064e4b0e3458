package rowmap

import (
	"errors"
	"fmt"

	"github.com/hupe1980/rowmap/rowstore"
)

var (
	// ErrNotFound is returned when no record exists under the given key.
	ErrNotFound = errors.New("record not found")

	// ErrClosed is returned when the database has already been closed.
	ErrClosed = errors.New("database is closed")
)

func translateError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, rowstore.ErrNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	return err
}
