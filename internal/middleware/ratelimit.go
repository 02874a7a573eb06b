package middleware

import (
	"lms-backend/internal/logger"
	"lms-backend/pkg/utils"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const limiterCleanupInterval = 10 * time.Minute

// RateLimiter holds rate limiters for different clients.
type RateLimiter struct {
	limiters    map[string]*rate.Limiter
	mu          sync.RWMutex
	rate        rate.Limit
	burst       int
	now         func() time.Time
	lastCleanup time.Time
}

// NewRateLimiter creates a new RateLimiter.
func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:    make(map[string]*rate.Limiter),
		rate:        rate.Limit(rps),
		burst:       burst,
		now:         time.Now,
		lastCleanup: time.Now(),
	}
}

// getLimiter returns the rate limiter for the given IP
func (rl *RateLimiter) getLimiter(ip string) *rate.Limiter {
	rl.mu.RLock()
	limiter, exists := rl.limiters[ip]
	rl.mu.RUnlock()

	if exists {
		return limiter
	}

	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists = rl.limiters[ip]
	if exists {
		return limiter
	}

	rl.cleanupLocked()

	limiter = rate.NewLimiter(rl.rate, rl.burst)
	rl.limiters[ip] = limiter
	return limiter
}

// cleanupLocked drops limiters that have refilled completely, at most once per
// limiterCleanupInterval. The map only grows on this path, so no background
// goroutine is needed. Callers hold rl.mu.
func (rl *RateLimiter) cleanupLocked() {
	now := rl.now()
	if now.Sub(rl.lastCleanup) < limiterCleanupInterval {
		return
	}
	rl.lastCleanup = now

	for ip, limiter := range rl.limiters {
		if limiter.TokensAt(now) >= float64(rl.burst) {
			delete(rl.limiters, ip)
		}
	}
}

// RateLimitMiddleware limits requests per client IP. A non-positive rps
// disables limiting.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	if burst <= 0 {
		burst = 1
	}
	limiter := NewRateLimiter(rps, burst)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		l := limiter.getLimiter(ip)

		if !l.Allow() {
			requestID := GetRequestID(c)
			logger.Warn("Rate limit exceeded",
				zap.String("request_id", requestID),
				zap.String("ip", ip),
				zap.String("path", utils.RoutePath(c)),
				zap.String("method", c.Request.Method),
			)

			utils.ErrorResponse(c, http.StatusTooManyRequests, "rate limit exceeded, please try again later")
			c.Abort()
			return
		}

		c.Next()
	}
}
