package codec

import (
	"encoding/json"
)

// JSON is the standard-library JSON codec.
//
// Rows marshal to an ordered array of columns, so JSON is a stable and
// portable wire form for the row log. If you need custom encoding,
// implement Codec and set it on the store.
//
// Persisted logs always record the codec name so it can be validated on
// load; the default codec may change over time.
type JSON struct{}

// Marshal encodes the value to JSON.
func (JSON) Marshal(v any) ([]byte, error) { return json.Marshal(v) }

// Unmarshal decodes the JSON data into v.
func (JSON) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }

// Name returns the unique name of the codec ("json").
func (JSON) Name() string { return "json" }

// Default is the default codec used by the library.
var Default Codec = GoJSON{}
