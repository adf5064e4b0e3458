package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/rowmap/internal/fs"
	"github.com/hupe1980/rowmap/model"
	"github.com/hupe1980/rowmap/rowstore"
	"github.com/hupe1980/rowmap/schema"
)

// phase tracks the orchestrator state machine:
// planning -> dispatching -> collecting -> merging -> done, or failed from
// any state.
type phase uint8

const (
	phasePlanning phase = iota
	phaseDispatching
	phaseCollecting
	phaseMerging
	phaseDone
	phaseFailed
)

// String returns the string representation of the phase.
func (p phase) String() string {
	switch p {
	case phasePlanning:
		return "planning"
	case phaseDispatching:
		return "dispatching"
	case phaseCollecting:
		return "collecting"
	case phaseMerging:
		return "merging"
	case phaseDone:
		return "done"
	case phaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stats is the aggregate result of a successful export.
type Stats struct {
	// Rows is the number of data rows written (header excluded).
	Rows int64
	// Bytes is the total size of the output file.
	Bytes int64
	// Workers is the resolved worker count.
	Workers int
	// Chunks is the number of planned partitions.
	Chunks int
	// Columns is the width of the resolved header.
	Columns int
	// Duration is the wall time of the whole export.
	Duration time.Duration
}

// Exporter drives the export pipeline for one store.
//
// An Exporter is stateless between runs and safe for concurrent Run calls
// as long as the store stays read-only while any run is in flight.
type Exporter struct {
	store  rowstore.Store
	opts   Options
	logger *slog.Logger
}

// New creates an exporter for the given store.
func New(store rowstore.Store, optFns ...func(*Options)) *Exporter {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if opts.fs == nil {
		opts.fs = fs.Default
	}

	return &Exporter{
		store:  store,
		opts:   opts,
		logger: logger,
	}
}

// Run exports the full dataset to a single CSV file at path.
//
// The file is written to a temporary sibling path and renamed into place
// only on full success; a failed run leaves no partial file behind. The
// output is deterministic: identical dataset and options produce
// byte-identical files regardless of worker count.
func (e *Exporter) Run(ctx context.Context, path string) (*Stats, error) {
	start := time.Now()

	// Planning: snapshot the keyspace, pre-scan the schema, resolve the
	// header and partition the keys.
	e.logPhase(ctx, phasePlanning, path)

	keys, err := e.store.Keys(ctx)
	if err != nil {
		return nil, e.fail(ctx, phasePlanning, fmt.Errorf("%w: %w", ErrStoreAccess, err))
	}

	registry := schema.NewRegistry()
	err = e.store.Scan(ctx, rowstore.Range{}, func(_ model.Key, row *model.Row) error {
		registry.Register(row)
		return nil
	})
	if err != nil {
		return nil, e.fail(ctx, phasePlanning, fmt.Errorf("%w: %w", ErrStoreAccess, err))
	}

	header := registry.Header(e.opts.PriorityColumns)
	workers := e.resolveWorkers(ctx)
	chunks := Plan(keys, workers)
	filters := NewFilterSet(e.opts.Filters...)

	// Dispatching/collecting: one worker per chunk, fail-fast on the
	// first worker error.
	e.logPhase(ctx, phaseDispatching, path, "workers", workers, "chunks", len(chunks))

	frags := make([]*fragment, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for _, c := range chunks {
		g.Go(func() error {
			frag, err := e.exportChunk(gctx, c, header, filters)
			if err != nil {
				return &WorkerError{Chunk: c.Index, cause: err}
			}
			frags[c.Index] = frag
			return nil
		})
	}

	e.logPhase(ctx, phaseCollecting, path)
	if err := g.Wait(); err != nil {
		return nil, e.fail(ctx, phaseCollecting, err)
	}

	// Merging: header once, then fragments strictly in chunk-index order.
	e.logPhase(ctx, phaseMerging, path)

	rows := int64(0)
	for _, frag := range frags {
		rows += frag.rows
	}

	bytes, err := e.merge(ctx, path, header, frags)
	if err != nil {
		return nil, e.fail(ctx, phaseMerging, err)
	}

	stats := &Stats{
		Rows:     rows,
		Bytes:    bytes,
		Workers:  workers,
		Chunks:   len(chunks),
		Columns:  len(header),
		Duration: time.Since(start),
	}

	e.logger.InfoContext(ctx, "export done",
		"path", path,
		"rows", stats.Rows,
		"bytes", stats.Bytes,
		"duration", stats.Duration,
	)
	return stats, nil
}

// resolveWorkers returns the caller-supplied worker count or derives one
// from the available hardware parallelism.
func (e *Exporter) resolveWorkers(ctx context.Context) int {
	if e.opts.Workers > 0 {
		return e.opts.Workers
	}
	if n := runtime.GOMAXPROCS(0); n > 0 {
		return n
	}
	// Non-fatal: fall back to a fixed default and keep going.
	e.logger.WarnContext(ctx, "cannot resolve available parallelism",
		"fallback_workers", DefaultWorkerCount,
	)
	return DefaultWorkerCount
}

func (e *Exporter) fail(ctx context.Context, p phase, err error) error {
	e.logger.ErrorContext(ctx, "export failed",
		"phase", p.String(),
		"error", err,
	)
	return err
}

func (e *Exporter) logPhase(ctx context.Context, p phase, path string, args ...any) {
	e.logger.DebugContext(ctx, "export phase",
		append([]any{"phase", p.String(), "path", path}, args...)...,
	)
}

// merge writes the final file: CSV header first, then each fragment in
// ascending chunk index order, to a temporary path that is renamed over
// the target only when everything (including the optional fsync) worked.
func (e *Exporter) merge(ctx context.Context, path string, header []string, frags []*fragment) (int64, error) {
	tmp := fmt.Sprintf("%s.%d.tmp", path, time.Now().UnixNano())

	f, err := e.opts.fs.OpenFile(tmp, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrMergeIO, err)
	}

	discard := func(err error) (int64, error) {
		_ = f.Close()
		_ = e.opts.fs.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrMergeIO, err)
	}

	counter := &countingWriter{w: f}
	var w io.Writer = counter
	if e.opts.MaxBytesPerSec > 0 {
		w = newRateLimitedWriter(ctx, w, e.opts.MaxBytesPerSec)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return discard(err)
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return discard(err)
	}

	copyBuf := make([]byte, 32*1024)
	for _, frag := range frags {
		if _, err := io.CopyBuffer(w, &frag.buf, copyBuf); err != nil {
			return discard(err)
		}
	}

	if e.opts.SyncOnMerge {
		if err := f.Sync(); err != nil {
			return discard(err)
		}
	}
	if err := f.Close(); err != nil {
		_ = e.opts.fs.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrMergeIO, err)
	}
	if err := e.opts.fs.Rename(tmp, path); err != nil {
		_ = e.opts.fs.Remove(tmp)
		return 0, fmt.Errorf("%w: %w", ErrMergeIO, err)
	}

	return counter.n, nil
}
