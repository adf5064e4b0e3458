// Package schema reconciles per-record column sets into one stable ordering.
//
// A Registry accumulates the union of column names seen across records
// during a scan. The order is first-seen order; registering a known name is
// a no-op. A Registry lives for the duration of one export pass and is not
// persisted.
package schema

import "github.com/hupe1980/rowmap/model"

// Registry tracks the ordered union of column names observed so far.
//
// Registry is not safe for concurrent use. The export engine builds it in
// a single-threaded pre-scan before workers are dispatched, then treats
// the resolved header as immutable.
type Registry struct {
	names []string
	seen  map[string]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{seen: make(map[string]struct{})}
}

// RegisterColumn inserts a single column name, keeping first-seen order.
// Registering the same name twice has no effect beyond the first.
func (r *Registry) RegisterColumn(name string) {
	if _, ok := r.seen[name]; ok {
		return
	}
	r.seen[name] = struct{}{}
	r.names = append(r.names, name)
}

// Register inserts any unseen column names of the row, in row order.
func (r *Registry) Register(row *model.Row) {
	for name := range row.All() {
		r.RegisterColumn(name)
	}
}

// Len returns the number of registered columns.
func (r *Registry) Len() int { return len(r.names) }

// Columns returns the registered column names in first-seen order.
func (r *Registry) Columns() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Header resolves the final export column order: the priority columns
// first, verbatim and deduplicated in caller order (even if never
// observed), followed by the remaining registered columns in first-seen
// order.
func (r *Registry) Header(priority []string) []string {
	header := make([]string, 0, len(priority)+len(r.names))
	leading := make(map[string]struct{}, len(priority))
	for _, name := range priority {
		if _, ok := leading[name]; ok {
			continue
		}
		leading[name] = struct{}{}
		header = append(header, name)
	}
	for _, name := range r.names {
		if _, ok := leading[name]; ok {
			continue
		}
		header = append(header, name)
	}
	return header
}
