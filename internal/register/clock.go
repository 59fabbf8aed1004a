package register

import "time"

// Clock supplies wall-clock time for record creation stamps and
// signature timestamps.
//
// Production code uses SystemClock. Tests substitute a deterministic
// clock so createdAt and timestamp fields are stable across runs and
// golden traces compare byte-for-byte.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time in the local zone. The date half of a
// record id is derived from this zone, so "today" means the operator's
// today, not UTC's.
func (SystemClock) Now() time.Time {
	return time.Now()
}
