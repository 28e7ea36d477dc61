// Package order classifies numeric sequences as ascending or descending and
// coerces unordered sequences into a preferred order.
package order

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Order is a monotonic direction.
type Order string

const (
	Ascending  Order = "ascending"
	Descending Order = "descending"
)

var (
	// ErrEmptyInput is returned when a sequence has no elements, so the
	// reference element of the order scan cannot be established.
	ErrEmptyInput = errors.New("order: empty sequence")

	// ErrIncomparable is the kind of every ComparisonError.
	ErrIncomparable = errors.New("order: elements are not totally ordered")

	// ErrInvalidOrder is returned for an order other than ascending or descending.
	ErrInvalidOrder = errors.New("order: invalid order")
)

// ComparisonError reports an element that cannot take part in a total order.
// Index is -1 when the value as a whole is not a sequence.
type ComparisonError struct {
	Index  int
	Value  any
	Reason string
}

func (e *ComparisonError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s (%T)", ErrIncomparable, e.Reason, e.Value)
	}
	return fmt.Sprintf("%s: element %d (%v): %s", ErrIncomparable, e.Index, e.Value, e.Reason)
}

func (e *ComparisonError) Unwrap() error { return ErrIncomparable }

// ParseOrder converts a configuration string to an Order.
func ParseOrder(s string) (Order, error) {
	switch o := Order(s); o {
	case Ascending, Descending:
		return o, nil
	}
	return "", fmt.Errorf("%w %q (want %s or %s)", ErrInvalidOrder, s, Ascending, Descending)
}

func (o Order) String() string { return string(o) }

// Classify walks seq once and reports its direction. A sequence that is
// already monotonic is returned as-is; otherwise a sorted copy in preferred
// order is returned and preferred becomes the label. seq is never modified.
//
// Ascending is checked first, so a constant or single-element sequence is
// labelled ascending.
func Classify[S ~[]E, E cmp.Ordered](seq S, preferred Order) (S, Order, error) {
	if len(seq) == 0 {
		return nil, "", ErrEmptyInput
	}

	asc, desc := true, true
	prev := seq[0]
	for i, x := range seq {
		if x != x {
			return nil, "", &ComparisonError{Index: i, Value: x, Reason: "NaN has no order"}
		}
		if x < prev {
			asc = false
		}
		if x > prev {
			desc = false
		}
		prev = x
	}

	switch {
	case asc:
		return seq, Ascending, nil
	case desc:
		return seq, Descending, nil
	}

	out := slices.Clone(seq)
	switch preferred {
	case Ascending:
		slices.Sort(out)
	case Descending:
		slices.SortFunc(out, func(a, b E) int { return cmp.Compare(b, a) })
	default:
		return nil, "", fmt.Errorf("%w %q", ErrInvalidOrder, preferred)
	}
	return out, preferred, nil
}

// IsMonotonic reports whether seq is non-decreasing (Ascending) or
// non-increasing (Descending).
func IsMonotonic[S ~[]E, E cmp.Ordered](seq S, o Order) bool {
	for i := 1; i < len(seq); i++ {
		switch o {
		case Ascending:
			if seq[i] < seq[i-1] {
				return false
			}
		case Descending:
			if seq[i] > seq[i-1] {
				return false
			}
		default:
			return false
		}
	}
	return true
}
