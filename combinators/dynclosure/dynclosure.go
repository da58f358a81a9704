// Package dynclosure wraps a function together with a named set of dynamic
// variables, giving each closure instance its own persistent, mutable
// snapshot of those variables.
//
// During a call the snapshot values are installed as shadow bindings of the
// named variables, so the wrapped function sees them as ordinary ambient
// state and may read and mutate them by name. When the call leaves, by
// return, error or panic, the closure reads the possibly mutated values back
// into its snapshot and unwinds the shadows, leaving the caller's bindings
// exactly as they were. The net effect is a closure that owns a private set
// of "global" variables living across calls, invisible to everyone else
// before and after each call.
//
// The underlying registry is process-wide, not goroutine-local: concurrent
// calls into the same closure instance from different goroutines race on the
// shared variable slots. Serialize such calls externally.
package dynclosure

import (
	"fmt"
	"slices"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/combinat_ive_go/shared/dynvar"
	"github.com/on-the-ground/combinat_ive_go/shared/tuple"
)

// New wraps fn with a private snapshot of the named dynamic variables.
//
// At construction the current ambient value of each name is read, in order,
// into a snapshot owned by this closure instance; a name with no active
// binding fails construction with dynvar.ErrUnbound. Two instances
// constructed over the same names evolve independently.
func New(
	names []string,
	fn func(args ...any) (tuple.Tuple, error),
) (func(args ...any) (tuple.Tuple, error), error) {
	names = slices.Clone(names)
	snapshot := make([]any, len(names))
	for i, name := range names {
		v, err := dynvar.Get(name)
		if err != nil {
			return nil, fmt.Errorf("dynclosure: %w", err)
		}
		snapshot[i] = v
	}

	logger := zap.L().With(
		zap.String("combinator", "dynclosure"),
		zap.String("instance_id", uuid.New().String()),
	)

	return func(args ...any) (tuple.Tuple, error) {
		restores := make([]func(), 0, len(names))
		defer func() {
			// Runs on every exit path, including panics from fn: first read
			// the ending values back into the snapshot while the shadows are
			// still installed, then unwind in reverse order so the caller's
			// bindings come back exactly as before the call.
			for i, name := range names {
				if v, err := dynvar.Get(name); err == nil {
					snapshot[i] = v
				}
			}
			for i := len(restores) - 1; i >= 0; i-- {
				restores[i]()
			}
			logger.Debug("snapshot captured and bindings unwound",
				zap.Int("num_vars", len(names)),
			)
		}()

		for i, name := range names {
			restore, err := dynvar.Bind(name, snapshot[i])
			if err != nil {
				// the variable was undefined after construction
				return nil, fmt.Errorf("dynclosure: %w", err)
			}
			restores = append(restores, restore)
		}

		return fn(args...)
	}, nil
}

// NewI0O1 wraps a nullary single-result function with a private snapshot of
// the named dynamic variables.
func NewI0O1[O1 any](names []string, fn func() (O1, error)) (func() (O1, error), error) {
	wrapped, err := New(names, func(_ ...any) (tuple.Tuple, error) {
		o1, err := fn()
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1), nil
	})
	if err != nil {
		return nil, err
	}
	return func() (O1, error) {
		res, err := wrapped()
		if err != nil {
			var zero O1
			return zero, err
		}
		return tuple.MustAt[O1](res, 0), nil
	}, nil
}

// NewI1O1 wraps a unary single-result function with a private snapshot of
// the named dynamic variables.
func NewI1O1[I1, O1 any](names []string, fn func(I1) (O1, error)) (func(I1) (O1, error), error) {
	wrapped, err := New(names, func(args ...any) (tuple.Tuple, error) {
		o1, err := fn(args[0].(I1))
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1), nil
	})
	if err != nil {
		return nil, err
	}
	return func(i1 I1) (O1, error) {
		res, err := wrapped(i1)
		if err != nil {
			var zero O1
			return zero, err
		}
		return tuple.MustAt[O1](res, 0), nil
	}, nil
}
