package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC. Stored timestamps are always UTC
// so records round-trip cleanly through every storage backend.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
