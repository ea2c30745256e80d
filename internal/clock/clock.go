// Package clock provides time utilities so floor timing can be pinned in tests
package clock

import "time"

// Clock provides time functionality
type Clock interface {
	Now() time.Time
}

// Real implements Clock using actual system time
type Real struct{}

// Now returns the current time
func (c *Real) Now() time.Time {
	return time.Now()
}

// New returns a new real clock
func New() Clock {
	return &Real{}
}

// Fixed always reports the same instant.
type Fixed struct {
	At time.Time
}

// Now returns the pinned time
func (c *Fixed) Now() time.Time {
	return c.At
}
