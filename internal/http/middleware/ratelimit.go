// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements a process-local token-bucket rate limiter. Each
// client gets two buckets: one for submissions (POST and other writes) and
// one for reads, so browsing a stored form never spends the budget that
// guards the insert path.
//
// Notes:
//   - Limits are per process. Horizontally scaled deployments need a shared
//     limiter in front of the service.
//   - Idempotent replays flagged by IdempotencyValidator skip the limiter.
//   - Idle buckets are dropped opportunistically to bound memory.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Request classes used for bucket selection and the rate-limit metric.
const (
	ClassWrite = "write"
	ClassRead  = "read"
)

// sweepEvery is the number of lookups between idle-bucket sweeps.
const sweepEvery = 5000

// keyFunc selects the client identity used to key buckets.
type keyFunc func(*gin.Context) string

// KeyByIP keys buckets by client address ("ip:<addr>"). The API is
// unauthenticated, so the caller's address is the only stable identity.
func KeyByIP() keyFunc {
	return func(c *gin.Context) string {
		return "ip:" + c.ClientIP()
	}
}

// Budget is a token-bucket allowance: RPS tokens per second up to Burst.
type Budget struct {
	RPS   float64
	Burst int
}

func (b Budget) limiter() *rate.Limiter {
	burst := b.Burst
	if burst <= 0 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(b.RPS), burst)
}

// requestClass reports whether r writes or only reads.
func requestClass(r *http.Request) string {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// RateLimiter holds per-client buckets for writes and reads.
// It is safe for concurrent use.
type RateLimiter struct {
	budgets map[string]Budget
	keyFn   keyFunc

	mu      sync.Mutex
	buckets map[string]*bucket
	ttl     time.Duration
	lookups uint64
	now     func() time.Time
}

// NewRateLimiter returns a limiter granting write to submissions and read to
// GET/HEAD/OPTIONS, per identity returned by keyFn. A Burst <= 0 is treated
// as 1; an RPS of 0 means the bucket never refills.
func NewRateLimiter(write, read Budget, keyFn keyFunc) *RateLimiter {
	return &RateLimiter{
		budgets: map[string]Budget{ClassWrite: write, ClassRead: read},
		keyFn:   keyFn,
		buckets: make(map[string]*bucket),
		ttl:     10 * time.Minute,
		now:     time.Now,
	}
}

// bucketFor returns the limiter for identity key in class, creating it on
// first use. Idle buckets are swept before the lookup so a stale bucket is
// replaced rather than refreshed.
func (rl *RateLimiter) bucketFor(class, key string) *rate.Limiter {
	now := rl.now()
	id := class + "|" + key

	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.lookups++
	if rl.lookups >= sweepEvery {
		rl.sweep(now)
	}

	if b, ok := rl.buckets[id]; ok {
		b.lastSeen = now
		return b.lim
	}
	lim := rl.budgets[class].limiter()
	rl.buckets[id] = &bucket{lim: lim, lastSeen: now}
	return lim
}

// sweep drops buckets idle for at least ttl. Callers hold rl.mu.
func (rl *RateLimiter) sweep(now time.Time) {
	for id, b := range rl.buckets {
		if now.Sub(b.lastSeen) >= rl.ttl {
			delete(rl.buckets, id)
		}
	}
	rl.lookups = 0
}

// IsRateBypass reports whether IdempotencyValidator marked this request as a
// replay that must not be limited.
func IsRateBypass(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyRateBypass)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// retryAfter is the whole number of seconds until lim has a token again,
// at least 1. ok is false when the request was admitted.
func retryAfter(lim *rate.Limiter, now time.Time) (secs int, ok bool) {
	r := lim.ReserveN(now, 1)
	if !r.OK() {
		// Zero-rate bucket that is already empty.
		return 1, true
	}
	d := r.DelayFrom(now)
	if d == 0 {
		return 0, false
	}
	r.CancelAt(now)
	return int(math.Max(1, math.Ceil(d.Seconds()))), true
}

// Handler returns the Gin middleware. Rejected requests get
//
//	HTTP/1.1 429 Too Many Requests
//	Retry-After: <seconds>
//	{"success": false, "request_id": "...", "code": "RATE_LIMITED", "message": "rate limit exceeded"}
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsRateBypass(c) {
			c.Next()
			return
		}

		class := requestClass(c.Request)
		lim := rl.bucketFor(class, rl.keyFn(c))
		secs, limited := retryAfter(lim, rl.now())
		if !limited {
			c.Next()
			return
		}

		c.Header("Retry-After", strconv.Itoa(secs))
		rateLimited.WithLabelValues(class).Inc()
		abortJSON(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
	}
}
