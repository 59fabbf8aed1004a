// Package testutil provides deterministic stand-ins for the register's
// clock and token collaborators so tests and harness scenarios produce
// byte-identical timestamps and traces across runs.
package testutil

import (
	"sync"
	"time"
)

// Clock is a deterministic wall clock for tests.
//
// Every call to Now() returns the current instant and then advances it
// by a fixed step, so successive timestamps are distinct, strictly
// ordered, and identical across runs. Implements register.Clock.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	now   time.Time
}

// NewClock creates a deterministic clock starting at start and advancing
// by step on each Now() call.
//
// Example:
//
//	clock := testutil.NewClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), time.Minute)
//	clock.Now() // 2024-03-01T09:00:00Z
//	clock.Now() // 2024-03-01T09:01:00Z
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{start: start, step: step, now: start}
}

// Now returns the clock's current instant and advances by the step.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Peek returns the instant the next Now() call will report, without
// advancing the clock.
func (c *Clock) Peek() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset rewinds the clock to its start instant.
//
// Used for test reuse. After Reset(), Now() replays the same sequence.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
