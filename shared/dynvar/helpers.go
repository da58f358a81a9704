package dynvar

import (
	"github.com/on-the-ground/combinat_ive_go/shared/helper"
)

// GetTyped fetches the active binding of name asserted to type T.
// Returns a zero value and error if the name is unbound or the type mismatches.
func GetTyped[T any](name string) (T, error) {
	return helper.GetTypedValueOf[T](func() (any, error) {
		return Get(name)
	})
}

// MustGetTyped is the panic-on-failure variant of GetTyped.
// It panics if the name is unbound or the type doesn't match.
func MustGetTyped[T any](name string) T {
	return helper.MustGetTypedValue[T](func() (any, error) {
		return Get(name)
	})
}
