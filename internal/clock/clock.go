// Package clock provides an abstraction for time operations to improve testability.
// Instead of calling time.Now() or time.After() directly, code can use the Clock
// interface which can be mocked in tests to control time-dependent behavior such
// as polling timeouts.
package clock

import "time"

// Clock is an interface for time operations.
// This allows polling code to be tested with mock clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that delivers the current time after d elapses.
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// After waits for the duration to elapse using a real timer.
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}
