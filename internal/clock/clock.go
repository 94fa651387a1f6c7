// Package clock abstracts wall-clock time so the economy can be driven
// deterministically in tests. Both the click cooldown and the passive
// income cadence are gated through ElapsedAtLeast.
package clock

import "time"

// Clock abstracts time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current time using the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a hand-advanced clock for tests and scripted scenarios.
type ManualClock struct {
	current time.Time
}

// NewManualClock creates a manual clock frozen at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{current: start}
}

// Now returns the frozen instant.
func (c *ManualClock) Now() time.Time {
	return c.current
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// ElapsedAtLeast reports whether at least threshold has passed between
// since and now. Pure, no side effects.
func ElapsedAtLeast(now, since time.Time, threshold time.Duration) bool {
	return now.Sub(since) >= threshold
}
