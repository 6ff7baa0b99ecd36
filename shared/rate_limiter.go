package shared

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// RequestRateLimiter spaces outbound calls to a rate-limited upstream.
// Callers are admitted one at a time, at least minimumDelay apart.
type RequestRateLimiter struct {
	minimumDelay    time.Duration
	lastRequestTime time.Time
	mutex           sync.Mutex
	requestCount    int64
}

// NewRequestRateLimiter creates a new rate limiter with the specified minimum delay
func NewRequestRateLimiter(minimumDelay time.Duration) *RequestRateLimiter {
	return &RequestRateLimiter{
		minimumDelay: minimumDelay,
	}
}

// Wait blocks until the minimum delay has elapsed since the last admitted
// request, or until ctx is done.
func (limiter *RequestRateLimiter) Wait(ctx context.Context) error {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()

	elapsedTime := time.Since(limiter.lastRequestTime)
	if elapsedTime < limiter.minimumDelay {
		remainingDelay := limiter.minimumDelay - elapsedTime

		logrus.WithFields(logrus.Fields{
			"component":       "RequestRateLimiter",
			"elapsed_time":    elapsedTime,
			"minimum_delay":   limiter.minimumDelay,
			"remaining_delay": remainingDelay,
			"request_count":   limiter.requestCount + 1,
		}).Debug("Enforcing rate limit delay")

		timer := time.NewTimer(remainingDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	limiter.lastRequestTime = time.Now()
	limiter.requestCount++
	return nil
}

// GetRequestCount returns the total number of requests admitted
func (limiter *RequestRateLimiter) GetRequestCount() int64 {
	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	return limiter.requestCount
}
