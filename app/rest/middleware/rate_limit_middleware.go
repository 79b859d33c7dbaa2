package middleware

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	apperrors "planora/app/utils/errors"
)

const (
	visitorTTL      = 3 * time.Minute
	cleanupInterval = time.Minute
)

// RateLimitRule limits requests whose path contains PathContains
type RateLimitRule struct {
	PathContains string
	Limit        rate.Limit
	Burst        int
}

// DefaultRateLimitRules keeps account creation and sign-in much tighter than
// the rest of the API.
func DefaultRateLimitRules() []RateLimitRule {
	return []RateLimitRule{
		{PathContains: "/accounts", Limit: rate.Every(time.Minute), Burst: 5},
		{PathContains: "/sign-in", Limit: rate.Every(12 * time.Second), Burst: 5},
	}
}

// RateLimiter is a per client IP and per rule token bucket limiter
type RateLimiter struct {
	rules        []RateLimitRule
	defaultLimit rate.Limit
	defaultBurst int
	visitors     map[string]*Visitor
	mutex        sync.Mutex
	now          func() time.Time
}

type Visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
	ttl      time.Duration
}

// NewRateLimiter creates a limiter and starts evicting idle visitors until
// ctx is done.
func NewRateLimiter(ctx context.Context, rules []RateLimitRule) *RateLimiter {
	rl := &RateLimiter{
		rules:        rules,
		defaultLimit: rate.Every(time.Second),
		defaultBurst: 20,
		visitors:     make(map[string]*Visitor),
		now:          time.Now,
	}

	go rl.cleanupVisitors(ctx)
	return rl
}

func (rl *RateLimiter) RateLimit() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			key, limit, burst := rl.ruleFor(c.Request().URL.Path)

			allowed, retryAfter := rl.allow(ip+"|"+key, limit, burst)
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))
				return apperrors.NewRateLimitExceeded(retryAfter)
			}

			return next(c)
		}
	}
}

func (rl *RateLimiter) ruleFor(path string) (string, rate.Limit, int) {
	for _, r := range rl.rules {
		if strings.Contains(path, r.PathContains) {
			return r.PathContains, r.Limit, r.Burst
		}
	}
	return "default", rl.defaultLimit, rl.defaultBurst
}

// allow consumes a token. When refused it returns the seconds until the next
// token.
func (rl *RateLimiter) allow(key string, limit rate.Limit, burst int) (bool, int) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	visitor, exists := rl.visitors[key]
	if !exists {
		visitor = &Visitor{limiter: rate.NewLimiter(limit, burst), ttl: idleTTL(limit, burst)}
		rl.visitors[key] = visitor
	}
	visitor.lastSeen = now

	if visitor.limiter.AllowN(now, 1) {
		return true, 0
	}

	reservation := visitor.limiter.ReserveN(now, 1)
	if !reservation.OK() {
		return false, 60
	}
	delay := reservation.DelayFrom(now)
	reservation.CancelAt(now)

	seconds := int(delay.Round(time.Second).Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return false, seconds
}

// idleTTL is how long a visitor is kept after its last request. A bucket is
// only dropped once it would have refilled to its full burst.
func idleTTL(limit rate.Limit, burst int) time.Duration {
	ttl := visitorTTL
	if limit > 0 && limit != rate.Inf {
		if full := time.Duration(float64(burst) / float64(limit) * float64(time.Second)).Round(time.Second); full > ttl {
			ttl = full
		}
	}
	return ttl
}

func (rl *RateLimiter) cleanupVisitors(ctx context.Context) {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	for key, visitor := range rl.visitors {
		if now.Sub(visitor.lastSeen) > visitor.ttl {
			delete(rl.visitors, key)
		}
	}
}
