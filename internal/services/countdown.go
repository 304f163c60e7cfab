package services

import (
	"sync"
	"time"
)

// Ticker is the scheduling primitive behind a Countdown
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Tests substitute a manual implementation.
type Clock interface {
	NewTicker(d time.Duration) Ticker
}

type realClock struct{}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// NewTicker implements Clock
func (realClock) NewTicker(d time.Duration) Ticker {
	return realTicker{t: time.NewTicker(d)}
}

// SystemClock returns a Clock backed by time.Ticker
func SystemClock() Clock { return realClock{} }

// Countdown is the OTP resend cooldown. It decrements once per Tick and
// never goes below zero; after Cancel it no longer changes.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	cancelled bool
	done      chan struct{}
}

// NewCountdown creates a stopped countdown starting at seconds
func NewCountdown(seconds int) *Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return &Countdown{remaining: seconds, done: make(chan struct{})}
}

// Start ticks the countdown once per second on clock until it reaches zero
// or is cancelled.
func (c *Countdown) Start(clock Clock) {
	if clock == nil {
		return
	}
	ticker := clock.NewTicker(time.Second)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-c.done:
				return
			case <-ticker.C():
				if c.Tick() == 0 {
					return
				}
			}
		}
	}()
}

// Tick decrements the countdown and returns the seconds left
func (c *Countdown) Tick() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return c.remaining
	}
	if c.remaining > 0 {
		c.remaining--
	}
	return c.remaining
}

// Cancel stops the countdown; further ticks are ignored
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancelled {
		return
	}
	c.cancelled = true
	close(c.done)
}

// Remaining returns the seconds left before a resend is allowed
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Expired reports whether the countdown has reached zero
func (c *Countdown) Expired() bool {
	return c.Remaining() == 0
}

// Cancelled reports whether Cancel was called
func (c *Countdown) Cancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}
