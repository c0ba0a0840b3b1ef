package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/ArowuTest/hostboard-backend/internal/metrics"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused bucket is kept
const limiterIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per caller. Buckets idle for longer than
// limiterIdleTTL are dropped.
type RateLimiter struct {
	limiters  map[string]*limiterEntry
	mu        sync.Mutex
	r         rate.Limit
	burst     int
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a new RateLimiter
func NewRateLimiter(r rate.Limit, burst int) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		r:         r,
		burst:     burst,
		lastSweep: time.Now(),
		now:       time.Now,
	}
}

func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= limiterIdleTTL {
		rl.evictIdle(now)
	}

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &limiterEntry{limiter: rate.NewLimiter(rl.r, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// evictIdle must be called with mu held
func (rl *RateLimiter) evictIdle(now time.Time) {
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) >= limiterIdleTTL {
			delete(rl.limiters, key)
		}
	}
	rl.lastSweep = now
}

// Middleware limits by authenticated caller, falling back to the client IP
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if caller, ok := GetCaller(c); ok {
			key = caller.Actor()
		}

		if !rl.getLimiter(key).Allow() {
			metrics.HttpRateLimitRejectionsTotal.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "rate limit exceeded, slow down",
			})
			return
		}

		c.Next()
	}
}
