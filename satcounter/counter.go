// Package satcounter implements unsigned saturating counters, the building
// block of confidence and usefulness estimation in predictor structures.
package satcounter

import "fmt"

// A Counter counts up and down within [0, 2^bits-1] without wrapping.
// The zero value is unusable; create counters with New.
type Counter struct {
	count   uint8
	initial uint8
	max     uint8
}

// New creates a counter of the given bit width, between 1 and 8, starting at
// the given initial value.
func New(bits int, initial uint8) Counter {
	if bits < 1 || bits > 8 {
		panic(fmt.Sprintf("satcounter: invalid bit width %d", bits))
	}

	max := uint8(1)<<bits - 1
	if initial > max {
		panic(fmt.Sprintf(
			"satcounter: initial value %d exceeds max %d", initial, max))
	}

	return Counter{count: initial, initial: initial, max: max}
}

// Increment adds one, saturating at the maximum.
func (c *Counter) Increment() {
	if c.count < c.max {
		c.count++
	}
}

// Decrement subtracts one, saturating at zero.
func (c *Counter) Decrement() {
	if c.count > 0 {
		c.count--
	}
}

// Value returns the current count.
func (c *Counter) Value() uint8 {
	return c.count
}

// Reset restores the initial value.
func (c *Counter) Reset() {
	c.count = c.initial
}

// IsMax reports whether the counter saturated high.
func (c *Counter) IsMax() bool {
	return c.count == c.max
}

// IsMin reports whether the counter saturated low.
func (c *Counter) IsMin() bool {
	return c.count == 0
}

// Saturation returns the count as a fraction of the maximum.
func (c *Counter) Saturation() float64 {
	return float64(c.count) / float64(c.max)
}
