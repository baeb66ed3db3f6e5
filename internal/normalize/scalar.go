// Package normalize reduces provider cell values to plain optional scalars.
//
// Depending on the query shape, the market-data provider may hand back a
// field as a bare number, a JSON null, or a single-element column slice.
// All of them must collapse to the same optional scalar before storage.
package normalize

import (
	"encoding/json"
	"math"
)

// Scalar coerces v to an optional float64. Absent, not-a-number, and
// un-unwrappable values yield nil; it never panics or returns an error.
func Scalar(v any) *float64 {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		if math.IsNaN(n) {
			return nil
		}
		return &n
	case float32:
		if math.IsNaN(float64(n)) {
			return nil
		}
		f := float64(n)
		return &f
	case int:
		f := float64(n)
		return &f
	case int32:
		f := float64(n)
		return &f
	case int64:
		f := float64(n)
		return &f
	case uint:
		f := float64(n)
		return &f
	case uint64:
		f := float64(n)
		return &f
	case json.Number:
		f, err := n.Float64()
		if err != nil || math.IsNaN(f) {
			return nil
		}
		return &f
	case []any:
		if len(n) == 1 {
			return Scalar(n[0])
		}
		return nil
	case []float64:
		if len(n) == 1 {
			return Scalar(n[0])
		}
		return nil
	default:
		return nil
	}
}

// Volume coerces v to an optional int64, truncating toward zero. Booleans
// are numeric-compatible in loosely typed provider payloads and are
// explicitly rejected.
func Volume(v any) *int64 {
	if _, ok := v.(bool); ok {
		return nil
	}
	f := Scalar(v)
	if f == nil {
		return nil
	}
	n := int64(*f)
	return &n
}
