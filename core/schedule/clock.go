package schedule

import "fmt"

// Clock tracks monotonic simulated time in minutes.
type Clock struct {
	now float64
}

// Now returns the current simulated time.
func (c *Clock) Now() float64 { return c.now }

// Advance moves the clock forward to t. Moving backwards is an invariant
// violation.
func (c *Clock) Advance(t float64) error {
	if t < c.now {
		return fmt.Errorf("clock moved backwards: %v -> %v", c.now, t)
	}
	c.now = t
	return nil
}
