package export

import (
	"fmt"
	"unicode/utf8"

	"github.com/hupe1980/rowmap/model"
)

// KeyColumn is the reserved column name that resolves to the record key.
// It is materialized only when the header references it (via the priority
// list or a record column of the same name); a record's own column wins
// over the materialized key.
const KeyColumn = "id"

// Project maps a record's dynamic columns onto the fixed header order:
// for each header column the record's value, or an empty field if absent.
//
// Identical header and record always yield identical output; this is what
// lets independent workers agree on column positions without coordination.
// Values that are not valid UTF-8 are an encoding error.
func Project(key model.Key, row *model.Row, header []string) ([]string, error) {
	fields := make([]string, len(header))
	for i, col := range header {
		v, ok := row.Get(col)
		if !ok && col == KeyColumn {
			v = string(key)
		}
		if !utf8.ValidString(v) {
			return nil, fmt.Errorf("%w: column %q of record %q is not valid UTF-8", ErrEncoding, col, key)
		}
		fields[i] = v
	}
	return fields, nil
}
