// Package testutil provides deterministic random dataset generators for
// tests, examples and benchmarks.
package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/rowmap/model"
)

const alphanumeric = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// String returns a random alphanumeric string of length n.
func (r *RNG) String(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stringLocked(n)
}

// stringLocked is the internal implementation (caller must hold lock).
func (r *RNG) stringLocked(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = alphanumeric[r.rand.Intn(len(alphanumeric))]
	}
	return string(b)
}

// ColumnNames generates n distinct random column names of the form
// "C/xxxxx". The shared pool lets generated rows overlap on some columns
// and diverge on others, like real sparse datasets do.
func (r *RNG) ColumnNames(n int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, n)
	seen := make(map[string]struct{}, n)
	for len(names) < n {
		name := "C/" + r.stringLocked(5)
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Row generates a row with a random subset of the given columns, between
// minCols and maxCols of them, each with a random alphanumeric value.
func (r *RNG) Row(columns []string, minCols, maxCols int) *model.Row {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := minCols
	if maxCols > minCols {
		n += r.rand.Intn(maxCols - minCols + 1)
	}
	if n > len(columns) {
		n = len(columns)
	}

	row := model.NewRow()
	for _, i := range r.rand.Perm(len(columns))[:n] {
		row.Set(columns[i], r.stringLocked(8))
	}
	return row
}

// Dataset generates num keyed rows over a shared pool of poolSize random
// columns. Keys are zero-padded so their lexicographic order matches their
// generation order.
func (r *RNG) Dataset(num, poolSize, minCols, maxCols int) map[model.Key]*model.Row {
	columns := r.ColumnNames(poolSize)

	rows := make(map[model.Key]*model.Row, num)
	for i := 0; i < num; i++ {
		key := model.Key(fmt.Sprintf("row-%06d", i))
		rows[key] = r.Row(columns, minCols, maxCols)
	}
	return rows
}
