package rowmap

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/rowmap/export"
	"github.com/hupe1980/rowmap/model"
	"github.com/hupe1980/rowmap/rowstore"
)

// RowMap is the embedded database handle. It is safe for concurrent use;
// writers must pause while an export is running so the export sees one
// consistent dataset.
type RowMap struct {
	store  rowstore.Store
	opts   options
	closed atomic.Bool
}

// New creates a purely in-memory database. Contents are lost on Close.
func New(optFns ...Option) *RowMap {
	return &RowMap{
		store: rowstore.NewMemoryStore(),
		opts:  applyOptions(optFns),
	}
}

// Open creates or reopens a durable database in dir. Existing rows are
// recovered from the append-only log.
func Open(dir string, optFns ...Option) (*RowMap, error) {
	opts := applyOptions(optFns)

	store, err := rowstore.Open(dir, opts.storeOptions...)
	if err != nil {
		opts.logger.LogRecovery(context.Background(), dir, 0, err)
		return nil, err
	}

	rows, _ := store.Count(context.Background())
	opts.logger.LogRecovery(context.Background(), dir, rows, nil)

	return &RowMap{
		store: store,
		opts:  opts,
	}, nil
}

// Put stores row under key, replacing any previous record.
func (db *RowMap) Put(ctx context.Context, key model.Key, row *model.Row) error {
	if db.closed.Load() {
		return ErrClosed
	}

	start := time.Now()
	err := db.store.Put(ctx, key, row)
	db.opts.metricsCollector.RecordPut(time.Since(start), err)
	db.opts.logger.LogPut(ctx, string(key), row.Len(), err)

	return translateError(err)
}

// Get retrieves the record stored under key.
// The returned row is owned by the database and must not be mutated.
func (db *RowMap) Get(ctx context.Context, key model.Key) (*model.Row, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	row, err := db.store.Get(ctx, key)
	db.opts.metricsCollector.RecordGet(time.Since(start), err)

	if err != nil {
		return nil, translateError(err)
	}
	return row, nil
}

// Delete removes the record stored under key.
func (db *RowMap) Delete(ctx context.Context, key model.Key) error {
	if db.closed.Load() {
		return ErrClosed
	}

	start := time.Now()
	err := db.store.Delete(ctx, key)
	db.opts.metricsCollector.RecordDelete(time.Since(start), err)
	db.opts.logger.LogDelete(ctx, string(key), err)

	return translateError(err)
}

// Count returns the number of stored records.
func (db *RowMap) Count(ctx context.Context) (uint64, error) {
	if db.closed.Load() {
		return 0, ErrClosed
	}
	return db.store.Count(ctx)
}

// ExportCSV exports the full dataset to a single CSV file at path using
// parallel workers. Writers must not run concurrently with the export.
//
// See the export package for the available options (worker count, priority
// columns, row filters, throttling).
func (db *RowMap) ExportCSV(ctx context.Context, path string, optFns ...func(*export.Options)) (*export.Stats, error) {
	if db.closed.Load() {
		return nil, ErrClosed
	}

	optFns = append([]func(*export.Options){
		export.WithLogger(db.opts.logger.Logger),
	}, optFns...)

	start := time.Now()
	stats, err := export.New(db.store, optFns...).Run(ctx, path)

	var rows int64
	if stats != nil {
		rows = stats.Rows
	}
	db.opts.metricsCollector.RecordExport(rows, time.Since(start), err)
	db.opts.logger.LogExport(ctx, path, rows, err)

	return stats, err
}

// Close releases the database. For a durable database this closes the
// append-only log; further operations return ErrClosed. Close is
// idempotent.
func (db *RowMap) Close() error {
	if db.closed.Swap(true) {
		return nil
	}
	if c, ok := db.store.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}
