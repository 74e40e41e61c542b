package core

import "time"

type Clock struct {
	startTime time.Time
	last      time.Time
	elapsed   time.Duration
	now       func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// NewClockWithSource builds a clock reading time from now.
func NewClockWithSource(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if !c.startTime.IsZero() {
		c.elapsed = c.now().Sub(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	c.startTime = c.now()
	c.last = c.startTime
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = time.Time{}
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

func (c *Clock) Running() bool {
	return !c.startTime.IsZero()
}

// Tick returns the time since the previous Tick (or Start) and advances the mark.
// A stopped clock always reports zero.
func (c *Clock) Tick() time.Duration {
	if c.startTime.IsZero() {
		return 0
	}
	now := c.now()
	dt := now.Sub(c.last)
	c.last = now
	c.elapsed = now.Sub(c.startTime)
	return dt
}
