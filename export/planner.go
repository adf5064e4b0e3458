package export

import (
	"github.com/hupe1980/rowmap/model"
	"github.com/hupe1980/rowmap/rowstore"
)

// Chunk is a disjoint, contiguous key-range partition of the dataset,
// consumed by exactly one worker. Index preserves output order during the
// merge.
type Chunk struct {
	Index int
	Start model.Key // inclusive; first key of the chunk
	End   model.Key // exclusive; empty means unbounded
	Rows  int       // row count at planning time
}

// Range returns the store scan range covered by the chunk.
func (c Chunk) Range() rowstore.Range {
	return rowstore.Range{Start: c.Start, End: c.End}
}

// Plan divides the sorted key snapshot into contiguous, disjoint chunks.
//
// Chunk size is total/workers (floor division); the last chunk absorbs the
// remainder, so the union of all chunks is exactly the full keyspace with
// no gaps or overlaps. workers is clamped to at least 1. An empty snapshot
// yields a single empty chunk so the export still emits a header-only
// file. When there are fewer rows than workers, one single-row chunk per
// row is produced.
func Plan(keys []model.Key, workers int) []Chunk {
	if workers < 1 {
		workers = 1
	}
	n := len(keys)
	if n == 0 {
		return []Chunk{{Index: 0}}
	}

	size := n / workers
	count := workers
	if size == 0 {
		size = 1
		count = n
	}

	chunks := make([]Chunk, 0, count)
	for i := 0; i < count; i++ {
		lo := i * size
		hi := lo + size
		if i == count-1 {
			hi = n
		}

		c := Chunk{
			Index: i,
			Start: keys[lo],
			Rows:  hi - lo,
		}
		if hi < n {
			c.End = keys[hi]
		}
		chunks = append(chunks, c)
	}
	return chunks
}
