package testfixtures

import (
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

// Clock is a manually driven time source. All accessors are safe for
// concurrent use so services under test may read it from goroutines.
type Clock struct {
	mu  sync.RWMutex
	now time.Time
}

// NewClock starts a clock at start, or at ReferenceTime when start is zero.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{now: start}
}

func (c *Clock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

// NowFunc returns c.Now for injection into services. A nil clock yields the
// wall clock.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// At returns hour:minute UTC on the clock's current day shifted by days.
func (c *Clock) At(days, hour, minute int) time.Time {
	y, m, d := c.Now().UTC().Date()
	return time.Date(y, m, d+days, hour, minute, 0, 0, time.UTC)
}

// Date formats the UTC day shifted by days as YYYY-MM-DD, the form used by
// date query parameters.
func (c *Clock) Date(days int) string {
	return c.At(days, 0, 0).Format(dateLayout)
}
