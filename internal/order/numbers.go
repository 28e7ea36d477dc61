package order

import (
	"cmp"
	"encoding/json"
	"fmt"
	"math"
)

// maxExactInt is the largest integer magnitude a float64 holds exactly.
const maxExactInt = 1 << 53

// Normalized is the outcome of Normalize. Values keeps the element type of
// the payload: typed slices come back as the same type, decoded []any
// becomes []int64 when every element is an integer and []float64 otherwise.
type Normalized struct {
	Values  any
	Order   Order
	Coerced bool
}

// Normalize classifies a payload value without changing its element type,
// so integers never lose precision. Non-finite floats are rejected because
// they cannot be encoded on the wire.
func Normalize(v any, preferred Order) (Normalized, error) {
	switch s := v.(type) {
	case []float64:
		if err := checkFinite(s); err != nil {
			return Normalized{}, err
		}
		return normalize(s, preferred)
	case []float32:
		if err := checkFinite(s); err != nil {
			return Normalized{}, err
		}
		return normalize(s, preferred)
	case []int:
		return normalize(s, preferred)
	case []int64:
		return normalize(s, preferred)
	case []any:
		decoded, err := decode(s)
		if err != nil {
			return Normalized{}, err
		}
		return Normalize(decoded, preferred)
	case nil:
		return Normalized{}, &ComparisonError{Index: -1, Value: v, Reason: "missing sequence"}
	default:
		return Normalized{}, &ComparisonError{Index: -1, Value: v, Reason: "not a numeric sequence"}
	}
}

func normalize[S ~[]E, E cmp.Ordered](s S, preferred Order) (Normalized, error) {
	out, label, err := Classify(s, preferred)
	if err != nil {
		return Normalized{}, err
	}
	return Normalized{Values: out, Order: label, Coerced: !IsMonotonic(s, label)}, nil
}

func checkFinite[E float32 | float64](s []E) error {
	for i, e := range s {
		f := float64(e)
		if math.IsNaN(f) {
			return &ComparisonError{Index: i, Value: e, Reason: "NaN has no order"}
		}
		if math.IsInf(f, 0) {
			return &ComparisonError{Index: i, Value: e, Reason: "non-finite value"}
		}
	}
	return nil
}

// decode turns JSON/YAML-decoded elements into []int64 or []float64. An
// integer that a float64 cannot hold exactly is rejected when it has to
// share a sequence with floats.
func decode(s []any) (any, error) {
	ints := make([]int64, len(s))
	floats := make([]float64, len(s))
	allInts := true
	for i, e := range s {
		n, f, isInt, err := element(e)
		if err != nil {
			return nil, &ComparisonError{Index: i, Value: e, Reason: err.Error()}
		}
		ints[i], floats[i] = n, f
		if !isInt {
			allInts = false
		}
	}
	if allInts {
		return ints, nil
	}
	for i, e := range s {
		if _, _, isInt, _ := element(e); isInt && (ints[i] > maxExactInt || ints[i] < -maxExactInt) {
			return nil, &ComparisonError{Index: i, Value: e, Reason: "integer too large to compare exactly with floats"}
		}
	}
	return floats, nil
}

// element reports e as an int64 (when isInt) and as a float64.
func element(e any) (n int64, f float64, isInt bool, err error) {
	switch x := e.(type) {
	case int:
		return int64(x), float64(x), true, nil
	case int32:
		return int64(x), float64(x), true, nil
	case int64:
		return x, float64(x), true, nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, 0, false, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), float64(x), true, nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, 0, false, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), float64(x), true, nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i, float64(i), true, nil
		}
		v, err := x.Float64()
		if err != nil {
			return 0, 0, false, fmt.Errorf("bad number %q", x.String())
		}
		f = v
	case float32:
		f = float64(x)
	case float64:
		f = x
	default:
		return 0, 0, false, fmt.Errorf("%T is not a number", e)
	}
	if math.IsNaN(f) {
		return 0, 0, false, fmt.Errorf("NaN has no order")
	}
	if math.IsInf(f, 0) {
		return 0, 0, false, fmt.Errorf("non-finite value")
	}
	return 0, f, false, nil
}
