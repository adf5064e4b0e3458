package rowstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/rowmap/model"
)

func TestMemoryStoreCRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// 1. Put/Get
	require.NoError(t, s.Put(ctx, "k1", model.RowOf("A", "foo")))
	require.NoError(t, s.Put(ctx, "k2", model.RowOf("B", "bar")))

	row, err := s.Get(ctx, "k1")
	require.NoError(t, err)
	v, ok := row.Get("A")
	assert.True(t, ok)
	assert.Equal(t, "foo", v)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	// 2. Overwrite
	require.NoError(t, s.Put(ctx, "k1", model.RowOf("A", "updated")))
	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), n)

	// 3. Delete
	require.NoError(t, s.Delete(ctx, "k1"))
	assert.ErrorIs(t, s.Delete(ctx, "k1"), ErrNotFound)

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Key{"k2"}, keys)
}

func TestMemoryStoreEmptyKey(t *testing.T) {
	s := NewMemoryStore()
	assert.ErrorIs(t, s.Put(context.Background(), "", model.RowOf("A", "1")), ErrInvalidKey)
}

func TestMemoryStorePutClones(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	row := model.RowOf("A", "original")
	require.NoError(t, s.Put(ctx, "k", row))
	row.Set("A", "mutated")

	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	v, _ := got.Get("A")
	assert.Equal(t, "original", v)
}

func TestMemoryStoreKeysSorted(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, k := range []model.Key{"c", "a", "b", "aa"} {
		require.NoError(t, s.Put(ctx, k, model.RowOf("x", "1")))
	}

	keys, err := s.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []model.Key{"a", "aa", "b", "c"}, keys)
}

func TestMemoryStoreScanRange(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, k := range []model.Key{"a", "b", "c", "d"} {
		require.NoError(t, s.Put(ctx, k, model.RowOf("k", string(k))))
	}

	collect := func(r Range) []model.Key {
		var out []model.Key
		err := s.Scan(ctx, r, func(key model.Key, _ *model.Row) error {
			out = append(out, key)
			return nil
		})
		require.NoError(t, err)
		return out
	}

	tests := []struct {
		name string
		r    Range
		want []model.Key
	}{
		{"Full", Range{}, []model.Key{"a", "b", "c", "d"}},
		{"Bounded", Range{Start: "b", End: "d"}, []model.Key{"b", "c"}},
		{"OpenEnd", Range{Start: "c"}, []model.Key{"c", "d"}},
		{"Empty", Range{Start: "x", End: "z"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(tt.r))
		})
	}
}

func TestMemoryStoreScanAborts(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, k := range []model.Key{"a", "b", "c"} {
		require.NoError(t, s.Put(ctx, k, model.RowOf("k", string(k))))
	}

	boom := assert.AnError
	var visited int
	err := s.Scan(ctx, Range{}, func(model.Key, *model.Row) error {
		visited++
		if visited == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, visited)
}

func TestMemoryStoreScanCanceled(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.Put(context.Background(), "a", model.RowOf("k", "1")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Scan(ctx, Range{}, func(model.Key, *model.Row) error {
		t.Fatal("callback should not run after cancellation")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRangeContains(t *testing.T) {
	tests := []struct {
		name string
		r    Range
		key  model.Key
		want bool
	}{
		{"FullRange", Range{}, "anything", true},
		{"StartInclusive", Range{Start: "b", End: "d"}, "b", true},
		{"EndExclusive", Range{Start: "b", End: "d"}, "d", false},
		{"Below", Range{Start: "b"}, "a", false},
		{"OpenEnd", Range{Start: "b"}, "zzz", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.r.Contains(tt.key))
		})
	}
}
