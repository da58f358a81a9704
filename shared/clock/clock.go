package clock

import (
	"sync"
	"time"
)

// Clock is a coarse wall-clock time source. Implementations return
// whole-second readings that never decrease between calls.
type Clock interface {
	Now() time.Time
}

// Coarse reads the system wall clock truncated to whole seconds.
// The monotonic reading of time.Now is preserved, so comparisons between
// readings are immune to wall-clock adjustments.
type Coarse struct{}

func (Coarse) Now() time.Time {
	return time.Now().Truncate(time.Second)
}

// Fake is a settable clock for tests.
type Fake struct {
	mu  sync.Mutex
	now time.Time
}

// NewFake returns a Fake clock starting at the given instant,
// truncated to whole seconds.
func NewFake(start time.Time) *Fake {
	return &Fake{now: start.Truncate(time.Second)}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Advance moves the clock forward by d, truncated to whole seconds.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d).Truncate(time.Second)
}
