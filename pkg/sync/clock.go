// ABOUTME: Pausable monotonic clock measured in seconds
// ABOUTME: Accumulates running time across start/stop cycles
package sync

import (
	"sync"
	"time"
)

// Clock accumulates elapsed time while running
type Clock struct {
	mu      sync.RWMutex
	now     func() time.Time
	running bool
	started time.Time
	elapsed time.Duration
}

// Option configures a Clock
type Option func(*Clock)

// WithNow replaces the time source
func WithNow(now func() time.Time) Option {
	return func(c *Clock) {
		c.now = now
	}
}

// NewClock creates a stopped clock at zero
func NewClock(opts ...Option) *Clock {
	c := &Clock{now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start resumes the clock. Starting a running clock has no effect.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}
	c.running = true
	c.started = c.now()
}

// Stop freezes the clock at its current value
func (c *Clock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return
	}
	c.elapsed += c.now().Sub(c.started)
	c.running = false
}

// Running reports whether the clock is advancing
func (c *Clock) Running() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Elapsed returns total running time
func (c *Clock) Elapsed() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.running {
		return c.elapsed
	}
	return c.elapsed + c.now().Sub(c.started)
}

// Seconds returns total running time in seconds
func (c *Clock) Seconds() float64 {
	return c.Elapsed().Seconds()
}
