package services

import (
	"sync"
	"testing"
	"time"
)

// manualClock hands out tickers that only fire when the test says so
type manualClock struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

type manualTicker struct {
	ch      chan time.Time
	stopped chan struct{}
	once    sync.Once
}

func (t *manualTicker) C() <-chan time.Time { return t.ch }
func (t *manualTicker) Stop()               { t.once.Do(func() { close(t.stopped) }) }

func (c *manualClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTicker{ch: make(chan time.Time), stopped: make(chan struct{})}
	c.tickers = append(c.tickers, t)
	return t
}

func (c *manualClock) latest(t *testing.T) *manualTicker {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.tickers) == 0 {
		t.Fatal("no ticker was created")
	}
	return c.tickers[len(c.tickers)-1]
}

// fire delivers one tick; it blocks until the countdown goroutine takes it
func (tk *manualTicker) fire(t *testing.T) {
	t.Helper()
	select {
	case tk.ch <- time.Now():
	case <-time.After(time.Second):
		t.Fatal("countdown goroutine did not take the tick")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCountdown_TickNeverGoesNegative(t *testing.T) {
	cd := NewCountdown(3)

	want := []int{2, 1, 0, 0, 0}
	for i, w := range want {
		if got := cd.Tick(); got != w {
			t.Errorf("tick %d: remaining = %d, want %d", i+1, got, w)
		}
	}
	if !cd.Expired() {
		t.Error("Expired() = false after reaching zero")
	}
}

func TestCountdown_CancelFreezesValue(t *testing.T) {
	cd := NewCountdown(30)
	cd.Tick()
	cd.Cancel()
	cd.Cancel()

	if got := cd.Tick(); got != 29 {
		t.Errorf("Tick() after Cancel = %d, want 29", got)
	}
	if !cd.Cancelled() {
		t.Error("Cancelled() = false")
	}
}

func TestCountdown_NegativeStartClampsToZero(t *testing.T) {
	if got := NewCountdown(-5).Remaining(); got != 0 {
		t.Errorf("Remaining() = %d, want 0", got)
	}
}

func TestCountdown_StartDrivenByClock(t *testing.T) {
	clock := &manualClock{}
	cd := NewCountdown(2)
	cd.Start(clock)
	tk := clock.latest(t)

	tk.fire(t)
	waitFor(t, func() bool { return cd.Remaining() == 1 })

	tk.fire(t)
	waitFor(t, func() bool { return cd.Remaining() == 0 })

	// the goroutine stops its ticker once it reaches zero
	select {
	case <-tk.stopped:
	case <-time.After(time.Second):
		t.Fatal("ticker not stopped after countdown expired")
	}
}

func TestCountdown_CancelStopsTicker(t *testing.T) {
	clock := &manualClock{}
	cd := NewCountdown(30)
	cd.Start(clock)
	tk := clock.latest(t)

	cd.Cancel()

	select {
	case <-tk.stopped:
	case <-time.After(time.Second):
		t.Fatal("ticker not stopped after Cancel")
	}
	if got := cd.Remaining(); got != 30 {
		t.Errorf("Remaining() = %d, want 30", got)
	}
}

func TestCountdown_StartWithNilClockIsManual(t *testing.T) {
	cd := NewCountdown(5)
	cd.Start(nil)
	if got := cd.Tick(); got != 4 {
		t.Errorf("Tick() = %d, want 4", got)
	}
}
