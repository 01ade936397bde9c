package testutil

import (
	"sync"
	"time"
)

// FixedClock is a settable wall clock for tests.
//
// Sessions stamp play_datetime from their clock; a FixedClock makes those
// timestamps reproducible so table snapshots compare byte for byte.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FixedClock struct {
	mu  sync.Mutex
	now time.Time
}

// DefaultTime is the instant a FixedClock starts at when given the zero time.
var DefaultTime = time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)

// NewFixedClock creates a clock frozen at start.
// A zero start means DefaultTime.
func NewFixedClock(start time.Time) *FixedClock {
	if start.IsZero() {
		start = DefaultTime
	}
	return &FixedClock{now: start}
}

// Now returns the current frozen instant.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new instant.
func (c *FixedClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Set moves the clock to t.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}
