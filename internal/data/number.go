package data

import (
	"encoding/json"
	"math"
	"strconv"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Number is a numeric movie field. Stored documents do not always hold a
// number there, so decoding any other BSON type leaves it unset instead of
// failing the whole read.
type Number struct {
	Value float64
	Valid bool
}

// NumberOf returns a set Number.
func NumberOf(v float64) Number {
	return Number{Value: v, Valid: true}
}

// Int returns the value truncated to an int, or 0 when unset.
func (n Number) Int() int {
	return int(n.Value)
}

// IsZero reports whether n is unset; omitempty fields skip it.
func (n Number) IsZero() bool {
	return !n.Valid
}

// MarshalBSONValue writes whole numbers as int64 and the rest as doubles.
func (n Number) MarshalBSONValue() (byte, []byte, error) {
	var v any
	switch {
	case !n.Valid:
		v = nil
	case n.Value == math.Trunc(n.Value) && math.Abs(n.Value) < 1<<53:
		v = int64(n.Value)
	default:
		v = n.Value
	}
	t, b, err := bson.MarshalValue(v)
	return byte(t), b, err
}

// UnmarshalBSONValue accepts double, int32, int64 and decimal values. Any
// other type leaves n unset.
func (n *Number) UnmarshalBSONValue(typ byte, data []byte) error {
	*n = Number{}
	rv := bson.RawValue{Type: bson.Type(typ), Value: data}
	if f, ok := rv.DoubleOK(); ok {
		if !math.IsNaN(f) {
			*n = NumberOf(f)
		}
		return nil
	}
	if i, ok := rv.Int32OK(); ok {
		*n = NumberOf(float64(i))
		return nil
	}
	if i, ok := rv.Int64OK(); ok {
		*n = NumberOf(float64(i))
		return nil
	}
	if d, ok := rv.Decimal128OK(); ok {
		if f, err := strconv.ParseFloat(d.String(), 64); err == nil {
			*n = NumberOf(f)
		}
	}
	return nil
}

// MarshalJSON writes the value, or null when unset.
func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}
