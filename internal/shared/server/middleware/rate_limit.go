package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"doctoc-backend/internal/shared/server/respond"
)

const (
	defaultRateLimitGroup = "DEFAULT"

	// buckets untouched for bucketIdleTTL are dropped, checked every sweepInterval
	bucketIdleTTL = 10 * time.Minute
	sweepInterval = time.Minute
)

// RateLimitRule is a token bucket: Rate tokens per second, up to Burst.
// A rule with Rate or Burst <= 0 allows everything.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

// RateLimitConfig selects a rule per request via GroupFor. Groups without a
// rule are not limited.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter holds one token bucket per key.
type RateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*rateBucket
	now       func() time.Time
	lastSweep time.Time
}

type rateBucket struct {
	tokens float64
	last   time.Time
}

// NewRateLimiter builds a limiter; now defaults to time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		buckets: make(map[string]*rateBucket),
		now:     now,
	}
}

// RateLimit rejects requests over their group's budget with 429, keyed by
// client IP and group.
func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}

		allowed, retryAfter := cfg.Limiter.Allow(c.ClientIP()+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}

		retryAfterMs := max(int(retryAfter/time.Millisecond), 1)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(float64(retryAfterMs)/1000.0))))
		respond.Error(c, http.StatusTooManyRequests, "rate_limited", "too many requests", gin.H{
			"group":        group,
			"retryAfterMs": retryAfterMs,
		})
	}
}

// Allow takes one token from key's bucket. When none is available it reports
// how long until one will be.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	l.sweep(now)

	bucket, ok := l.buckets[key]
	if !ok {
		bucket = &rateBucket{tokens: float64(rule.Burst), last: now}
		l.buckets[key] = bucket
	}
	if elapsed := now.Sub(bucket.last).Seconds(); elapsed > 0 {
		bucket.tokens = math.Min(float64(rule.Burst), bucket.tokens+elapsed*rule.Rate)
		bucket.last = now
	}
	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, 0
	}

	waitSec := (1 - bucket.tokens) / rule.Rate
	return false, time.Duration(math.Ceil(waitSec*1000.0)) * time.Millisecond
}

// Len reports how many buckets are tracked.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *RateLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < sweepInterval {
		return
	}
	l.lastSweep = now
	for key, b := range l.buckets {
		if now.Sub(b.last) > bucketIdleTTL {
			delete(l.buckets, key)
		}
	}
}
