package clock

import (
	"sync"
	"time"
)

// Clock is the wall-clock source used for timestamps.
type Clock interface {
	Now() time.Time
}

type Real struct{}

func NewReal() *Real {
	return &Real{}
}

func (c *Real) Now() time.Time {
	return time.Now().UTC()
}

// Stub is a manually driven clock for tests.
type Stub struct {
	mu  sync.Mutex
	now time.Time
}

func NewStub(now time.Time) *Stub {
	return &Stub{now: now.UTC()}
}

func (c *Stub) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Stub) Set(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now.UTC()
}

// Advance moves the clock forward by d and returns the new reading.
func (c *Stub) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// Millis converts t to epoch milliseconds.
func Millis(t time.Time) int64 {
	return t.UnixMilli()
}
