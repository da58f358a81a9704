// Package once wraps a function so only its first invocation executes.
//
// The first call runs the wrapped function and records its full ordered
// result tuple. Every later call, for any arguments, ignores its arguments
// and replays the recorded tuple unchanged. There is no way to reset.
//
// A failing first call does not count: the error propagates to the caller,
// nothing is recorded, and the next call attempts execution again. Failures
// are never cached.
package once

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/on-the-ground/combinat_ive_go/shared/tuple"
)

// New wraps a variadic function so it executes at most once.
//
// The wrapper performs no internal synchronization: two goroutines racing on
// the first call may both observe "not yet run" and both execute, with the
// last writer's tuple recorded. Callers needing exactly-once under
// concurrency must serialize externally.
func New(fn func(args ...any) (tuple.Tuple, error)) func(args ...any) (tuple.Tuple, error) {
	var (
		done   bool
		cached tuple.Tuple
	)
	logger := zap.L().With(
		zap.String("combinator", "once"),
		zap.String("instance_id", uuid.New().String()),
	)
	return func(args ...any) (tuple.Tuple, error) {
		if done {
			return cached, nil
		}
		res, err := fn(args...)
		if err != nil {
			return nil, err
		}
		cached = res
		done = true
		logger.Debug("first call recorded", zap.Int("arity", res.Len()))
		return res, nil
	}
}

// NewI0O1 wraps a nullary single-result function so it executes at most once.
func NewI0O1[O1 any](fn func() (O1, error)) func() (O1, error) {
	wrapped := New(func(_ ...any) (tuple.Tuple, error) {
		o1, err := fn()
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1), nil
	})
	return func() (O1, error) {
		res, err := wrapped()
		if err != nil {
			var zero O1
			return zero, err
		}
		return tuple.MustAt[O1](res, 0), nil
	}
}

// NewI0O2 wraps a nullary dual-result function so it executes at most once.
func NewI0O2[O1, O2 any](fn func() (O1, O2, error)) func() (O1, O2, error) {
	wrapped := New(func(_ ...any) (tuple.Tuple, error) {
		o1, o2, err := fn()
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1, o2), nil
	})
	return func() (O1, O2, error) {
		res, err := wrapped()
		if err != nil {
			var z1 O1
			var z2 O2
			return z1, z2, err
		}
		return tuple.MustAt[O1](res, 0), tuple.MustAt[O2](res, 1), nil
	}
}

// NewI1O1 wraps a unary single-result function so it executes at most once.
// Calls after the first ignore their argument and replay the recorded result.
func NewI1O1[I1, O1 any](fn func(I1) (O1, error)) func(I1) (O1, error) {
	wrapped := New(func(args ...any) (tuple.Tuple, error) {
		o1, err := fn(args[0].(I1))
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1), nil
	})
	return func(i1 I1) (O1, error) {
		res, err := wrapped(i1)
		if err != nil {
			var zero O1
			return zero, err
		}
		return tuple.MustAt[O1](res, 0), nil
	}
}

// NewI1O2 wraps a unary dual-result function so it executes at most once.
func NewI1O2[I1, O1, O2 any](fn func(I1) (O1, O2, error)) func(I1) (O1, O2, error) {
	wrapped := New(func(args ...any) (tuple.Tuple, error) {
		o1, o2, err := fn(args[0].(I1))
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1, o2), nil
	})
	return func(i1 I1) (O1, O2, error) {
		res, err := wrapped(i1)
		if err != nil {
			var z1 O1
			var z2 O2
			return z1, z2, err
		}
		return tuple.MustAt[O1](res, 0), tuple.MustAt[O2](res, 1), nil
	}
}

// NewI2O1 wraps a binary single-result function so it executes at most once.
func NewI2O1[I1, I2, O1 any](fn func(I1, I2) (O1, error)) func(I1, I2) (O1, error) {
	wrapped := New(func(args ...any) (tuple.Tuple, error) {
		o1, err := fn(args[0].(I1), args[1].(I2))
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1), nil
	})
	return func(i1 I1, i2 I2) (O1, error) {
		res, err := wrapped(i1, i2)
		if err != nil {
			var zero O1
			return zero, err
		}
		return tuple.MustAt[O1](res, 0), nil
	}
}

// NewI2O2 wraps a binary dual-result function so it executes at most once.
func NewI2O2[I1, I2, O1, O2 any](fn func(I1, I2) (O1, O2, error)) func(I1, I2) (O1, O2, error) {
	wrapped := New(func(args ...any) (tuple.Tuple, error) {
		o1, o2, err := fn(args[0].(I1), args[1].(I2))
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1, o2), nil
	})
	return func(i1 I1, i2 I2) (O1, O2, error) {
		res, err := wrapped(i1, i2)
		if err != nil {
			var z1 O1
			var z2 O2
			return z1, z2, err
		}
		return tuple.MustAt[O1](res, 0), tuple.MustAt[O2](res, 1), nil
	}
}
