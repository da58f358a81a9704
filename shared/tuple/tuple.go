package tuple

import (
	"github.com/on-the-ground/combinat_ive_go/shared/helper"
)

// Tuple is the full, order-preserving set of values produced by one function
// invocation. Combinators that cache and replay results (once, throttle,
// dynclosure) use it so that arity-preserving replay is well-defined for
// functions returning more than one value.
type Tuple []any

// Of builds a Tuple from the given values, preserving order.
func Of(vals ...any) Tuple {
	t := make(Tuple, len(vals))
	copy(t, vals)
	return t
}

// Len returns the number of values in the tuple.
func (t Tuple) Len() int {
	return len(t)
}

// At returns the i-th value of the tuple asserted to type T.
// Returns (zero, false) when the index is out of range or the type mismatches.
func At[T any](t Tuple, i int) (T, bool) {
	return helper.GetTypedValueOf2[T](func() (any, bool) {
		if i < 0 || i >= len(t) {
			return nil, false
		}
		return t[i], true
	})
}

// MustAt is the panic-on-failure variant of At.
// Use when the tuple shape is guaranteed by construction.
func MustAt[T any](t Tuple, i int) T {
	v, ok := At[T](t, i)
	if !ok {
		panic("tuple: value at index has unexpected type or index out of range")
	}
	return v
}
