package engine

import "sync/atomic"

// Clock is a monotonic sequence counter stamping every fired event.
//
// Firings are ordered by the sweep (object order, then rule declaration
// order, then target order); the seq number makes that order explicit on
// each Firing so traces and golden files can assert on it.
//
// Thread-safety: atomic, though the engine's single-threaded frame loop
// means only one goroutine normally calls Next.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and increments the clock.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// Reset winds the clock back to 0. Used by Engine.Reset.
func (c *Clock) Reset() {
	c.seq.Store(0)
}
