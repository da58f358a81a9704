package throttle_test

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/on-the-ground/combinat_ive_go/combinators/throttle"
	"github.com/on-the-ground/combinat_ive_go/shared/clock"
)

func fakeClock(t *testing.T) *clock.Fake {
	t.Helper()
	return clock.NewFake(time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC))
}

func TestThrottle_FirstCallExecutes(t *testing.T) {
	clk := fakeClock(t)
	calls := 0
	f := throttle.NewI0O1WithClock(func() (int, error) {
		calls++
		return calls, nil
	}, 60, false, clk)

	v, err := f()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)
}

func TestThrottle_WithinWindowReturnsCached(t *testing.T) {
	clk := fakeClock(t)
	calls := 0
	f := throttle.NewI0O1WithClock(func() (int, error) {
		calls++
		return calls, nil
	}, 2, false, clk)

	v1, _ := f()
	v2, _ := f()
	assert.Equal(t, v1, v2)

	clk.Advance(1 * time.Second)
	v3, _ := f()
	assert.Equal(t, v1, v3)
	assert.Equal(t, 1, calls)
}

func TestThrottle_ElapsedWindowReexecutes(t *testing.T) {
	clk := fakeClock(t)
	calls := 0
	f := throttle.NewI0O1WithClock(func() (int, error) {
		calls++
		return calls, nil
	}, 2, false, clk)

	v, _ := f()
	assert.Equal(t, 1, v)

	// exactly the wait boundary counts as elapsed
	clk.Advance(2 * time.Second)
	v, _ = f()
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, calls)
}

func TestThrottle_StaleResultIgnoresArguments(t *testing.T) {
	clk := fakeClock(t)
	f := throttle.NewI1O1WithClock(func(n int) (int, error) {
		return n * 10, nil
	}, 30, false, clk)

	v, _ := f(1)
	assert.Equal(t, 10, v)

	// a suppressed call replays the cached value of the earlier argument
	v, _ = f(2)
	assert.Equal(t, 10, v)
}

func TestThrottle_ErrorDoesNotConsumeWindow(t *testing.T) {
	clk := fakeClock(t)
	boom := errors.New("boom")
	attempts := 0
	f := throttle.NewI0O1WithClock(func() (int, error) {
		attempts++
		if attempts == 1 {
			return 0, boom
		}
		return attempts, nil
	}, 60, false, clk)

	_, err := f()
	assert.ErrorIs(t, err, boom)

	// the failure left the window open: the very next call executes
	v, err := f()
	assert.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.Equal(t, 2, attempts)
}

func TestThrottle_ErrorPreservesCachedResult(t *testing.T) {
	clk := fakeClock(t)
	boom := errors.New("boom")
	calls := 0
	f := throttle.NewI0O1WithClock(func() (int, error) {
		calls++
		if calls == 2 {
			return 0, boom
		}
		return calls, nil
	}, 2, false, clk)

	v, _ := f()
	assert.Equal(t, 1, v)

	clk.Advance(2 * time.Second)
	_, err := f()
	assert.ErrorIs(t, err, boom)

	// the failed execution did not overwrite the cache
	clk.Advance(2 * time.Second)
	v, err = f()
	assert.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestThrottle_SynchronizedConcurrentCallers(t *testing.T) {
	undo := zap.ReplaceGlobals(zaptest.NewLogger(t))
	defer undo()

	clk := fakeClock(t)
	var executions atomic.Int64
	f := throttle.NewI0O1WithClock(func() (int, error) {
		executions.Add(1)
		return int(executions.Load()), nil
	}, 3600, true, clk)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := f()
			assert.NoError(t, err)
			assert.Equal(t, 1, v)
		}()
	}
	wg.Wait()

	// the mutex makes check/execute/update atomic: exactly one execution
	assert.Equal(t, int64(1), executions.Load())
}

func TestThrottle_DualResults(t *testing.T) {
	clk := fakeClock(t)
	calls := 0
	f := throttle.NewI0O2WithClock(func() (int, string, error) {
		calls++
		return calls, "payload", nil
	}, 5, false, clk)

	n, s, err := f()
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "payload", s)

	n, s, err = f()
	assert.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, "payload", s)
	assert.Equal(t, 1, calls)
}

func TestThrottle_BinaryVariant(t *testing.T) {
	clk := fakeClock(t)
	f := throttle.NewI2O1WithClock(func(a, b int) (int, error) {
		return a + b, nil
	}, 2, false, clk)

	v, err := f(2, 3)
	assert.NoError(t, err)
	assert.Equal(t, 5, v)

	v, err = f(7, 8)
	assert.NoError(t, err)
	assert.Equal(t, 5, v)

	clk.Advance(2 * time.Second)
	v, err = f(7, 8)
	assert.NoError(t, err)
	assert.Equal(t, 15, v)
}

func TestThrottle_ZeroWaitAlwaysExecutes(t *testing.T) {
	clk := fakeClock(t)
	calls := 0
	f := throttle.NewI0O1WithClock(func() (int, error) {
		calls++
		return calls, nil
	}, 0, false, clk)

	v, _ := f()
	assert.Equal(t, 1, v)
	v, _ = f()
	assert.Equal(t, 2, v)
}
