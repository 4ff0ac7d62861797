package docstore

import (
	"encoding/json"
	"math"
	"strconv"
)

// Doc is a single record of a collection. ID is assigned by the store on
// insert and never changes afterwards.
type Doc struct {
	ID     string
	Fields Fields
}

// Fields holds the schema-flexible body of a document as decoded from JSON.
type Fields map[string]any

// String returns the string value of key, or "" when absent or not a string.
func (f Fields) String(key string) string {
	if v, ok := f[key].(string); ok {
		return v
	}
	return ""
}

// Float returns the numeric value of key. JSON numbers decode as float64;
// integers written by Go callers are accepted too.
func (f Fields) Float(key string) float64 {
	switch v := f[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		n, _ := v.Float64()
		return n
	case string:
		n, _ := strconv.ParseFloat(v, 64)
		return n
	}
	return 0
}

// Int returns the value of key rounded to the nearest integer.
func (f Fields) Int(key string) int {
	return int(math.Round(f.Float(key)))
}

// Clone returns a shallow copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}
