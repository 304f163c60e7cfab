package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type deviceLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// DeviceRateLimiter keeps one token bucket per device. Buckets unused for
// the idle timeout are refilled anyway, so Sweep drops them.
type DeviceRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*deviceLimiter
	limit    rate.Limit
	burst    int
	idle     time.Duration
	now      func() time.Time
}

// NewDeviceRateLimiter allows perMinute requests per device with the given burst
func NewDeviceRateLimiter(perMinute, burst int) *DeviceRateLimiter {
	if perMinute <= 0 {
		perMinute = 10
	}
	if burst <= 0 {
		burst = 1
	}
	limit := rate.Every(time.Minute / time.Duration(perMinute))
	// long enough for an empty bucket to fill up again
	idle := time.Duration(burst) * (time.Minute / time.Duration(perMinute))
	if idle < 10*time.Minute {
		idle = 10 * time.Minute
	}
	return &DeviceRateLimiter{
		limiters: make(map[string]*deviceLimiter),
		limit:    limit,
		burst:    burst,
		idle:     idle,
		now:      time.Now,
	}
}

func (l *DeviceRateLimiter) limiterFor(deviceID string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	d, ok := l.limiters[deviceID]
	if !ok {
		d = &deviceLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[deviceID] = d
	}
	d.lastSeen = l.now()
	return d.limiter
}

// Len returns the number of tracked devices
func (l *DeviceRateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// Sweep forgets devices idle for the idle timeout and returns how many were dropped
func (l *DeviceRateLimiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-l.idle)
	dropped := 0
	for id, d := range l.limiters {
		if !d.lastSeen.After(cutoff) {
			delete(l.limiters, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done
func (l *DeviceRateLimiter) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Sweep()
		}
	}
}

// Limit rejects requests over the device's budget with 429. It must run after DeviceID.
func (l *DeviceRateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.limiterFor(DeviceFromContext(c)).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			c.Abort()
			return
		}
		c.Next()
	}
}
