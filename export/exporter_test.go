package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rowmap/internal/fs"
	"github.com/hupe1980/rowmap/model"
	"github.com/hupe1980/rowmap/rowstore"
)

func withFS(fsys fs.FileSystem) func(*Options) {
	return func(o *Options) {
		o.fs = fsys
	}
}

func newTestStore(t *testing.T, rows map[model.Key]*model.Row) rowstore.Store {
	t.Helper()

	store := rowstore.NewMemoryStore()
	for key, row := range rows {
		require.NoError(t, store.Put(context.Background(), key, row))
	}
	return store
}

func TestExporterRun(t *testing.T) {
	ctx := context.Background()

	t.Run("priority columns lead and missing values are empty", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", "foo", "B", "bar"),
			"r2": model.RowOf("A", "baz", "C", "doe"),
		})
		path := filepath.Join(t.TempDir(), "out.csv")

		exporter := New(store, WithPriorityColumns("A", "C"))
		stats, err := exporter.Run(ctx, path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "A,C,B\nfoo,,bar\nbaz,doe,\n", string(data))

		assert.Equal(t, int64(2), stats.Rows)
		assert.Equal(t, int64(len(data)), stats.Bytes)
		assert.Equal(t, 3, stats.Columns)
	})

	t.Run("filters drop matching rows", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", "foo", "B", "bar"),
			"r2": model.RowOf("A", "baz", "C", "doe"),
		})
		path := filepath.Join(t.TempDir(), "out.csv")

		exporter := New(store,
			WithPriorityColumns("A", "C"),
			WithFilters(Contains(1, "doe")),
		)
		stats, err := exporter.Run(ctx, path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "A,C,B\nfoo,,bar\n", string(data))
		assert.Equal(t, int64(1), stats.Rows)
	})

	t.Run("empty dataset produces a header-only file", func(t *testing.T) {
		store := newTestStore(t, nil)
		path := filepath.Join(t.TempDir(), "out.csv")

		exporter := New(store, WithPriorityColumns("A", "B"))
		stats, err := exporter.Run(ctx, path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "A,B\n", string(data))
		assert.Equal(t, int64(0), stats.Rows)
		assert.Equal(t, 1, stats.Chunks)
	})

	t.Run("output is byte-identical regardless of worker count", func(t *testing.T) {
		rows := make(map[model.Key]*model.Row)
		for i := 0; i < 100; i++ {
			rows[model.Key(fmt.Sprintf("key-%03d", i))] = model.RowOf(
				"A", fmt.Sprintf("a-%d", i),
				fmt.Sprintf("C%d", i%7), fmt.Sprintf("v-%d", i),
			)
		}
		store := newTestStore(t, rows)

		var reference []byte
		for _, workers := range []int{1, 2, 4, 16, 200} {
			t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
				path := filepath.Join(t.TempDir(), "out.csv")

				exporter := New(store,
					WithWorkers(workers),
					WithPriorityColumns("A"),
				)
				stats, err := exporter.Run(ctx, path)
				require.NoError(t, err)
				assert.Equal(t, int64(100), stats.Rows)
				assert.Equal(t, workers, stats.Workers)

				data, err := os.ReadFile(path)
				require.NoError(t, err)
				if reference == nil {
					reference = data
				} else {
					assert.Equal(t, string(reference), string(data))
				}
			})
		}
	})

	t.Run("values needing quoting survive the round trip", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", `comma, and "quotes"`, "B", "line\nbreak"),
		})
		path := filepath.Join(t.TempDir(), "out.csv")

		exporter := New(store, WithPriorityColumns("A", "B"))
		_, err := exporter.Run(ctx, path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "A,B\n\"comma, and \"\"quotes\"\"\",\"line\nbreak\"\n", string(data))
	})

	t.Run("key column via priority list", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", "foo"),
		})
		path := filepath.Join(t.TempDir(), "out.csv")

		exporter := New(store, WithPriorityColumns(KeyColumn, "A"))
		_, err := exporter.Run(ctx, path)
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "id,A\nr1,foo\n", string(data))
	})

	t.Run("invalid utf-8 fails with a worker error and leaves no file", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", string([]byte{0xff, 0xfe})),
		})
		path := filepath.Join(t.TempDir(), "out.csv")

		exporter := New(store, WithWorkers(1))
		_, err := exporter.Run(ctx, path)
		require.ErrorIs(t, err, ErrEncoding)

		var we *WorkerError
		require.ErrorAs(t, err, &we)
		assert.Equal(t, 0, we.Chunk)

		_, err = os.Stat(path)
		assert.True(t, os.IsNotExist(err))
	})

	t.Run("sync failure leaves no partial file", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", "foo"),
		})
		dir := t.TempDir()
		path := filepath.Join(dir, "out.csv")

		faulty := fs.NewFaultyFS(nil)
		faulty.FailOnSync = true

		exporter := New(store, withFS(faulty))
		_, err := exporter.Run(ctx, path)
		require.ErrorIs(t, err, ErrMergeIO)
		require.ErrorIs(t, err, fs.ErrInjected)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("rename failure leaves no partial file", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", "foo"),
		})
		dir := t.TempDir()
		path := filepath.Join(dir, "out.csv")

		faulty := fs.NewFaultyFS(nil)
		faulty.FailOnRename = true

		exporter := New(store, withFS(faulty))
		_, err := exporter.Run(ctx, path)
		require.ErrorIs(t, err, ErrMergeIO)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("write failure during merge leaves no partial file", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", "foo"),
		})
		dir := t.TempDir()
		path := filepath.Join(dir, "out.csv")

		faulty := fs.NewFaultyFS(nil)
		faulty.FailAfterBytes = 2

		exporter := New(store, withFS(faulty))
		_, err := exporter.Run(ctx, path)
		require.ErrorIs(t, err, ErrMergeIO)

		entries, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("canceled context aborts the run", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", "foo"),
		})
		path := filepath.Join(t.TempDir(), "out.csv")

		cctx, cancel := context.WithCancel(ctx)
		cancel()

		exporter := New(store)
		_, err := exporter.Run(cctx, path)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("rate limited merge still produces the full file", func(t *testing.T) {
		store := newTestStore(t, map[model.Key]*model.Row{
			"r1": model.RowOf("A", "foo"),
			"r2": model.RowOf("A", "bar"),
		})
		path := filepath.Join(t.TempDir(), "out.csv")

		exporter := New(store, WithMaxBytesPerSec(1<<20))
		stats, err := exporter.Run(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.Rows)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "A\nfoo\nbar\n", string(data))
	})
}
