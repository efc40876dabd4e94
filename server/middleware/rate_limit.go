package middleware

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/hrygo/todoassist/server/auth"
	apierrors "github.com/hrygo/todoassist/server/internal/errors"
)

// defaultIdleTTL is how long an unused key keeps its bucket.
const defaultIdleTTL = 10 * time.Minute

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per key. Buckets idle for longer than
// the idle TTL are dropped on the next sweep.
type RateLimiter struct {
	mu        sync.Mutex
	limits    map[string]*limiterEntry
	rate      rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

// NewRateLimiter creates a limiter allowing perSecond sustained requests
// with the given burst for every key.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	idleTTL := defaultIdleTTL
	// A bucket must stay until it has refilled, or dropping it would grant a
	// fresh burst early.
	if perSecond > 0 {
		if refill := time.Duration(float64(burst) / perSecond * float64(time.Second)); refill > idleTTL {
			idleTTL = refill
		}
	}
	return &RateLimiter{
		limits:  make(map[string]*limiterEntry),
		rate:    rate.Limit(perSecond),
		burst:   burst,
		idleTTL: idleTTL,
		now:     time.Now,
	}
}

// getLimiter gets or creates a limiter for the given key.
func (rl *RateLimiter) getLimiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	if now.Sub(rl.lastSweep) >= rl.idleTTL {
		rl.sweepLocked(now)
	}

	if entry, ok := rl.limits[key]; ok {
		entry.lastSeen = now
		return entry.limiter
	}

	limiter := rate.NewLimiter(rl.rate, rl.burst)
	rl.limits[key] = &limiterEntry{limiter: limiter, lastSeen: now}
	return limiter
}

// sweepLocked drops idle buckets. Caller holds mu.
func (rl *RateLimiter) sweepLocked(now time.Time) {
	for key, entry := range rl.limits {
		if now.Sub(entry.lastSeen) >= rl.idleTTL {
			delete(rl.limits, key)
		}
	}
	rl.lastSweep = now
}

// Allow checks if a request is allowed for the given key.
func (rl *RateLimiter) Allow(key string) bool {
	return rl.getLimiter(key).Allow()
}

// Len returns the number of tracked keys.
func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.limits)
}

// Middleware rejects requests over the limit with RATE_LIMIT_EXCEEDED.
// Authenticated requests are keyed by user, the rest by client IP.
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := "ip:" + c.RealIP()
			if userID, ok := auth.UserIDFromContext(c.Request().Context()); ok {
				key = "user:" + userID
			}
			if !rl.Allow(key) {
				return apierrors.RateLimitExceeded("too many requests").WithContext("key", key)
			}
			return next(c)
		}
	}
}
