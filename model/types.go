package model

import (
	"encoding/json"
	"iter"
)

// Key is the user-facing stable identifier of a record.
// Keys are ordered by lexicographic byte comparison; the export engine
// relies on this ordering when it partitions the keyspace into chunks.
type Key string

// Column is a single named cell of a row.
type Column struct {
	Name  string `json:"n"`
	Value string `json:"v"`
}

// Row is a record with a dynamic set of named columns.
//
// Column order is first-set order and is preserved across Set, Clone and
// codec round trips. Within one row, column names are unique: setting an
// existing name overwrites its value in place.
//
// A Row is not safe for concurrent mutation. Stores clone rows on Put, so
// a row handed to a store may be reused by the caller afterwards.
type Row struct {
	cols  []Column
	index map[string]int
}

// NewRow creates an empty row.
func NewRow() *Row {
	return &Row{index: make(map[string]int)}
}

// RowOf creates a row from alternating name/value pairs.
// It panics on an odd number of arguments; it is intended for tests and
// examples where the shape is statically known.
func RowOf(pairs ...string) *Row {
	if len(pairs)%2 != 0 {
		panic("model.RowOf: odd number of arguments")
	}
	r := NewRow()
	for i := 0; i < len(pairs); i += 2 {
		r.Set(pairs[i], pairs[i+1])
	}
	return r
}

// Set sets the value of the named column. A new name is appended behind
// the existing columns; a known name keeps its position.
func (r *Row) Set(name, value string) *Row {
	if r.index == nil {
		r.index = make(map[string]int)
	}
	if i, ok := r.index[name]; ok {
		r.cols[i].Value = value
		return r
	}
	r.index[name] = len(r.cols)
	r.cols = append(r.cols, Column{Name: name, Value: value})
	return r
}

// Get returns the value of the named column.
func (r *Row) Get(name string) (string, bool) {
	if r == nil || r.index == nil {
		return "", false
	}
	i, ok := r.index[name]
	if !ok {
		return "", false
	}
	return r.cols[i].Value, true
}

// Has reports whether the named column is present.
func (r *Row) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// Len returns the number of columns.
func (r *Row) Len() int {
	if r == nil {
		return 0
	}
	return len(r.cols)
}

// Names returns the column names in first-set order.
func (r *Row) Names() []string {
	if r == nil {
		return nil
	}
	names := make([]string, len(r.cols))
	for i, c := range r.cols {
		names[i] = c.Name
	}
	return names
}

// Columns returns a copy of the columns in first-set order.
func (r *Row) Columns() []Column {
	if r == nil {
		return nil
	}
	out := make([]Column, len(r.cols))
	copy(out, r.cols)
	return out
}

// All returns an iterator over name/value pairs in first-set order.
func (r *Row) All() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if r == nil {
			return
		}
		for _, c := range r.cols {
			if !yield(c.Name, c.Value) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the row.
func (r *Row) Clone() *Row {
	if r == nil {
		return nil
	}
	out := &Row{
		cols:  make([]Column, len(r.cols)),
		index: make(map[string]int, len(r.index)),
	}
	copy(out.cols, r.cols)
	for k, v := range r.index {
		out.index[k] = v
	}
	return out
}

// MarshalJSON encodes the row as an ordered array of columns.
// A map wire form would lose the first-set order, so rows always travel
// as `[{"n":...,"v":...},...]`.
func (r *Row) MarshalJSON() ([]byte, error) {
	if r == nil || r.cols == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(r.cols)
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (r *Row) UnmarshalJSON(data []byte) error {
	var cols []Column
	if err := json.Unmarshal(data, &cols); err != nil {
		return err
	}
	r.cols = r.cols[:0]
	r.index = make(map[string]int, len(cols))
	for _, c := range cols {
		r.Set(c.Name, c.Value)
	}
	return nil
}
