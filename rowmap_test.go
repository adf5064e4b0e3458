package rowmap

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rowmap/export"
	"github.com/hupe1980/rowmap/model"
	"github.com/hupe1980/rowmap/rowstore"
)

func TestRowMapCRUD(t *testing.T) {
	ctx := context.Background()

	t.Run("put and get", func(t *testing.T) {
		db := New()
		defer db.Close()

		require.NoError(t, db.Put(ctx, "k1", model.RowOf("name", "hase")))

		row, err := db.Get(ctx, "k1")
		require.NoError(t, err)

		name, ok := row.Get("name")
		assert.True(t, ok)
		assert.Equal(t, "hase", name)
	})

	t.Run("get missing key", func(t *testing.T) {
		db := New()
		defer db.Close()

		_, err := db.Get(ctx, "nope")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		db := New()
		defer db.Close()

		require.NoError(t, db.Put(ctx, "k1", model.RowOf("a", "1")))
		require.NoError(t, db.Delete(ctx, "k1"))

		_, err := db.Get(ctx, "k1")
		require.ErrorIs(t, err, ErrNotFound)

		err = db.Delete(ctx, "k1")
		require.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("count", func(t *testing.T) {
		db := New()
		defer db.Close()

		require.NoError(t, db.Put(ctx, "k1", model.RowOf("a", "1")))
		require.NoError(t, db.Put(ctx, "k2", model.RowOf("a", "2")))
		require.NoError(t, db.Put(ctx, "k1", model.RowOf("a", "3")))

		count, err := db.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint64(2), count)
	})

	t.Run("operations after close", func(t *testing.T) {
		db := New()
		require.NoError(t, db.Close())
		require.NoError(t, db.Close())

		assert.ErrorIs(t, db.Put(ctx, "k1", model.RowOf("a", "1")), ErrClosed)
		_, err := db.Get(ctx, "k1")
		assert.ErrorIs(t, err, ErrClosed)
		assert.ErrorIs(t, db.Delete(ctx, "k1"), ErrClosed)
		_, err = db.Count(ctx)
		assert.ErrorIs(t, err, ErrClosed)
		_, err = db.ExportCSV(ctx, "out.csv")
		assert.ErrorIs(t, err, ErrClosed)
	})
}

func TestRowMapDurable(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	db, err := Open(dir, WithStoreOptions(rowstore.WithCompression(rowstore.CompressionNone)))
	require.NoError(t, err)

	require.NoError(t, db.Put(ctx, "k1", model.RowOf("name", "hase", "city", "berlin")))
	require.NoError(t, db.Put(ctx, "k2", model.RowOf("name", "igel")))
	require.NoError(t, db.Delete(ctx, "k2"))
	require.NoError(t, db.Close())

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()

	count, err := db.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	row, err := db.Get(ctx, "k1")
	require.NoError(t, err)
	city, _ := row.Get("city")
	assert.Equal(t, "berlin", city)
}

func TestRowMapExportCSV(t *testing.T) {
	ctx := context.Background()

	db := New()
	defer db.Close()

	require.NoError(t, db.Put(ctx, "r1", model.RowOf("A", "foo", "B", "bar")))
	require.NoError(t, db.Put(ctx, "r2", model.RowOf("A", "baz", "C", "doe")))

	path := filepath.Join(t.TempDir(), "out.csv")
	stats, err := db.ExportCSV(ctx, path,
		export.WithPriorityColumns("A", "C"),
	)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Rows)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "A,C,B\nfoo,,bar\nbaz,doe,\n", string(data))
}

func TestRowMapMetrics(t *testing.T) {
	ctx := context.Background()

	metrics := &BasicMetricsCollector{}
	db := New(WithMetricsCollector(metrics))
	defer db.Close()

	require.NoError(t, db.Put(ctx, "k1", model.RowOf("a", "1")))
	_, err := db.Get(ctx, "k1")
	require.NoError(t, err)
	_, err = db.Get(ctx, "missing")
	require.Error(t, err)
	require.NoError(t, db.Delete(ctx, "k1"))

	path := filepath.Join(t.TempDir(), "out.csv")
	_, err = db.ExportCSV(ctx, path)
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.PutCount)
	assert.Equal(t, int64(2), stats.GetCount)
	assert.Equal(t, int64(1), stats.GetErrors)
	assert.Equal(t, int64(1), stats.DeleteCount)
	assert.Equal(t, int64(1), stats.ExportCount)
	assert.Equal(t, int64(0), stats.ExportRows)
}
