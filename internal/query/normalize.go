package query

import (
	"bytes"
	"encoding/json"
)

// RawResult is a decoded response body of unknown shape.
type RawResult struct {
	value any
}

// DecodeRaw parses a JSON body, keeping numbers as json.Number so that
// decimals survive without float rounding.
func DecodeRaw(body []byte) (RawResult, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return RawResult{}, err
	}
	return RawResult{value: v}, nil
}

// Shape is one of the response layouts the query service is known to use.
// The set is closed: BareArray, DataEnvelope, RowsEnvelope, Unrecognized.
type Shape interface {
	items() []any
	String() string
}

type (
	// BareArray is a response that is itself the row array.
	BareArray struct{ Items []any }
	// DataEnvelope carries the rows under a "data" key.
	DataEnvelope struct{ Items []any }
	// RowsEnvelope carries the rows under a "rows" key.
	RowsEnvelope struct{ Items []any }
	// Unrecognized is anything else and always yields no rows.
	Unrecognized struct{}
)

func (s BareArray) items() []any    { return s.Items }
func (s DataEnvelope) items() []any { return s.Items }
func (s RowsEnvelope) items() []any { return s.Items }
func (Unrecognized) items() []any   { return nil }

func (BareArray) String() string    { return "array" }
func (DataEnvelope) String() string { return "data" }
func (RowsEnvelope) String() string { return "rows" }
func (Unrecognized) String() string { return "unrecognized" }

// Classify picks the first recognised shape that actually holds an array,
// checking bare array, then "data", then "rows".
func Classify(raw RawResult) Shape {
	switch v := raw.value.(type) {
	case []any:
		return BareArray{Items: v}
	case map[string]any:
		if items, ok := v["data"].([]any); ok {
			return DataEnvelope{Items: items}
		}
		if items, ok := v["rows"].([]any); ok {
			return RowsEnvelope{Items: items}
		}
	}
	return Unrecognized{}
}

// Normalize extracts the row collection from raw. It never fails: an
// unrecognised shape gives an empty slice, and array elements that are not
// objects are dropped.
func Normalize(raw RawResult) []Row {
	items := Classify(raw).items()
	rows := make([]Row, 0, len(items))
	for _, it := range items {
		if obj, ok := it.(map[string]any); ok {
			rows = append(rows, Row(obj))
		}
	}
	return rows
}
