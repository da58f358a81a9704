package equality

import (
	"errors"
	"fmt"
)

// Kind selects how two keys are tested for sameness in a keyed container.
type Kind int

const (
	// Identity compares by reference: pointers, maps, channels, funcs and
	// slices are the same key only when they denote the same referent.
	// Values without a referent (ints, strings, structs) fall back to ==,
	// since Go has no observable identity for immediates.
	Identity Kind = iota

	// Value compares with Go's == operator. Keys whose dynamic type is not
	// comparable panic at insertion time, as with any Go map.
	Value

	// Deep compares with reflect.DeepEqual. Slices, maps and nested
	// structures are the same key when they are structurally equal.
	Deep
)

// ErrUnsupportedKind is returned when a container is constructed with a Kind
// value outside the supported set.
var ErrUnsupportedKind = errors.New("unsupported equality kind")

func (k Kind) String() string {
	switch k {
	case Identity:
		return "identity"
	case Value:
		return "value"
	case Deep:
		return "deep"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}
