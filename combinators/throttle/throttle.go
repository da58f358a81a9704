// Package throttle wraps a function so it executes at most once per
// configured time window, replaying the most recent result otherwise.
//
// The wrapper caches only the single most recent successful outcome. A
// suppressed call returns that cached tuple even when its arguments differ
// from the call that produced it; results are not keyed by argument.
// Elapsed time is measured on a coarse whole-second clock.
package throttle

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rickb777/date/v2/timespan"
	"go.uber.org/zap"

	"github.com/on-the-ground/combinat_ive_go/shared/clock"
	"github.com/on-the-ground/combinat_ive_go/shared/tuple"
)

// New wraps a variadic function so it executes at most once per waitSeconds.
//
// If at least waitSeconds whole seconds have elapsed since the last
// successful execution, the call runs fn, caches the fresh tuple, and
// returns it. Otherwise the cached tuple of the previous execution is
// returned unchanged. The first call always executes.
//
// An error from fn leaves the cached tuple and the window untouched: the
// error propagates, and the next call still attempts execution.
//
// With synchronized true, the whole check/execute/update sequence holds a
// mutex, making it atomic with respect to concurrent callers. With
// synchronized false no locking is performed; concurrent callers may race
// on the window and the cache, an accepted hazard for callers preferring
// throughput over strict correctness under concurrency.
func New(
	fn func(args ...any) (tuple.Tuple, error),
	waitSeconds int,
	synchronized bool,
) func(args ...any) (tuple.Tuple, error) {
	return NewWithClock(fn, waitSeconds, synchronized, clock.Coarse{})
}

// NewWithClock is New with an explicit time source. Tests use it with
// clock.Fake to drive the window deterministically.
func NewWithClock(
	fn func(args ...any) (tuple.Tuple, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func(args ...any) (tuple.Tuple, error) {
	th := &throttled{
		fn:   fn,
		wait: time.Duration(waitSeconds) * time.Second,
		clk:  clk,
		logger: zap.L().With(
			zap.String("combinator", "throttle"),
			zap.String("instance_id", uuid.New().String()),
		),
	}
	if synchronized {
		th.mu = &sync.Mutex{}
	}
	return th.call
}

type throttled struct {
	fn   func(args ...any) (tuple.Tuple, error)
	wait time.Duration
	clk  clock.Clock
	mu   *sync.Mutex // nil when unsynchronized

	// lastRun stays at the zero time until the first successful execution,
	// so the initial cool-down window lies entirely in the distant past.
	lastRun time.Time
	cached  tuple.Tuple

	logger *zap.Logger
}

func (t *throttled) call(args ...any) (tuple.Tuple, error) {
	if t.mu != nil {
		t.mu.Lock()
		defer t.mu.Unlock()
	}

	now := t.clk.Now()
	// a zero-length span still contains its start instant, so the window
	// check only applies when there is a window at all
	coolDown := timespan.BetweenTimes(t.lastRun, t.lastRun.Add(t.wait))
	if t.wait > 0 && coolDown.Contains(now) {
		t.logger.Debug("call suppressed within cool-down window",
			zap.Time("window_end", coolDown.End()),
		)
		return t.cached, nil
	}

	res, err := t.fn(args...)
	if err != nil {
		// a failed execution neither consumes the window nor touches the cache
		return nil, err
	}
	t.lastRun = now
	t.cached = res
	t.logger.Debug("executed", zap.Time("last_run", now))
	return res, nil
}

// NewI0O1 wraps a nullary single-result function with a waitSeconds window.
func NewI0O1[O1 any](
	fn func() (O1, error),
	waitSeconds int,
	synchronized bool,
) func() (O1, error) {
	return newI0O1(fn, waitSeconds, synchronized, clock.Coarse{})
}

// NewI0O1WithClock is NewI0O1 with an explicit time source.
func NewI0O1WithClock[O1 any](
	fn func() (O1, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func() (O1, error) {
	return newI0O1(fn, waitSeconds, synchronized, clk)
}

func newI0O1[O1 any](
	fn func() (O1, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func() (O1, error) {
	wrapped := NewWithClock(func(_ ...any) (tuple.Tuple, error) {
		o1, err := fn()
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1), nil
	}, waitSeconds, synchronized, clk)
	return func() (O1, error) {
		res, err := wrapped()
		if err != nil {
			var zero O1
			return zero, err
		}
		return tuple.MustAt[O1](res, 0), nil
	}
}

// NewI0O2 wraps a nullary dual-result function with a waitSeconds window.
func NewI0O2[O1, O2 any](
	fn func() (O1, O2, error),
	waitSeconds int,
	synchronized bool,
) func() (O1, O2, error) {
	return newI0O2(fn, waitSeconds, synchronized, clock.Coarse{})
}

// NewI0O2WithClock is NewI0O2 with an explicit time source.
func NewI0O2WithClock[O1, O2 any](
	fn func() (O1, O2, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func() (O1, O2, error) {
	return newI0O2(fn, waitSeconds, synchronized, clk)
}

func newI0O2[O1, O2 any](
	fn func() (O1, O2, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func() (O1, O2, error) {
	wrapped := NewWithClock(func(_ ...any) (tuple.Tuple, error) {
		o1, o2, err := fn()
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1, o2), nil
	}, waitSeconds, synchronized, clk)
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

// NewI1O1 wraps a unary single-result function with a waitSeconds window.
// Suppressed calls replay the cached result even when the argument differs.
func NewI1O1[I1, O1 any](
	fn func(I1) (O1, error),
	waitSeconds int,
	synchronized bool,
) func(I1) (O1, error) {
	return newI1O1(fn, waitSeconds, synchronized, clock.Coarse{})
}

// NewI1O1WithClock is NewI1O1 with an explicit time source.
func NewI1O1WithClock[I1, O1 any](
	fn func(I1) (O1, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func(I1) (O1, error) {
	return newI1O1(fn, waitSeconds, synchronized, clk)
}

func newI1O1[I1, O1 any](
	fn func(I1) (O1, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func(I1) (O1, error) {
	wrapped := NewWithClock(func(args ...any) (tuple.Tuple, error) {
		o1, err := fn(args[0].(I1))
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1), nil
	}, waitSeconds, synchronized, clk)
	return func(i1 I1) (O1, error) {
		res, err := wrapped(i1)
		if err != nil {
			var zero O1
			return zero, err
		}
		return tuple.MustAt[O1](res, 0), nil
	}
}

// NewI2O1 wraps a binary single-result function with a waitSeconds window.
func NewI2O1[I1, I2, O1 any](
	fn func(I1, I2) (O1, error),
	waitSeconds int,
	synchronized bool,
) func(I1, I2) (O1, error) {
	return newI2O1(fn, waitSeconds, synchronized, clock.Coarse{})
}

// NewI2O1WithClock is NewI2O1 with an explicit time source.
func NewI2O1WithClock[I1, I2, O1 any](
	fn func(I1, I2) (O1, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func(I1, I2) (O1, error) {
	return newI2O1(fn, waitSeconds, synchronized, clk)
}

func newI2O1[I1, I2, O1 any](
	fn func(I1, I2) (O1, error),
	waitSeconds int,
	synchronized bool,
	clk clock.Clock,
) func(I1, I2) (O1, error) {
	wrapped := NewWithClock(func(args ...any) (tuple.Tuple, error) {
		o1, err := fn(args[0].(I1), args[1].(I2))
		if err != nil {
			return nil, err
		}
		return tuple.Of(o1), nil
	}, waitSeconds, synchronized, clk)
	return func(i1 I1, i2 I2) (O1, error) {
		res, err := wrapped(i1, i2)
		if err != nil {
			var zero O1
			return zero, err
		}
		return tuple.MustAt[O1](res, 0), nil
	}
}
