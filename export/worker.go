package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"

	"github.com/hupe1980/rowmap/model"
)

// fragment is the self-contained CSV body a worker produced for its chunk.
// It carries no header; the orchestrator writes the header exactly once
// during the merge.
type fragment struct {
	index int
	rows  int64
	buf   bytes.Buffer
}

// exportChunk scans the chunk's key range, projects every record onto the
// shared header, applies the filters and CSV-encodes surviving rows into
// an in-memory fragment.
func (e *Exporter) exportChunk(ctx context.Context, c Chunk, header []string, filters *FilterSet) (*fragment, error) {
	frag := &fragment{index: c.Index}
	if c.Rows == 0 {
		return frag, nil
	}

	w := csv.NewWriter(&frag.buf)

	err := e.store.Scan(ctx, c.Range(), func(key model.Key, row *model.Row) error {
		fields, err := Project(key, row, header)
		if err != nil {
			return err
		}
		if filters.ShouldSkip(fields) {
			return nil
		}
		if err := w.Write(fields); err != nil {
			return fmt.Errorf("%w: %w", ErrEncoding, err)
		}
		frag.rows++
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrEncoding) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrStoreAccess, err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return frag, nil
}
