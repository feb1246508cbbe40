package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"resume-match/internal/shared/server/respond"
)

const (
	defaultRateLimitGroup = "DEFAULT"
	// UploadRateLimitGroup covers the analyze endpoint, which calls the provider.
	UploadRateLimitGroup = "UPLOAD"
)

// RateLimitRule is a token bucket refilled at Rate tokens per second and
// holding at most Burst tokens. A zero rule disables limiting.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

func (r RateLimitRule) enabled() bool {
	return r.Rate > 0 && r.Burst > 0
}

// RateLimitConfig maps request groups to rules. Requests in a group without
// a rule pass through.
type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

const (
	bucketIdleTTL    = 10 * time.Minute
	bucketSweepEvery = time.Minute
)

// RateLimiter holds one rate.Limiter per key. Limiters idle for longer than
// bucketIdleTTL are dropped; a new one starts full, so eviction never
// tightens a limit.
type RateLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*keyedLimiter
	now       func() time.Time
	lastSweep time.Time
}

type keyedLimiter struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter returns an empty limiter. now defaults to time.Now.
func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		limiters:  make(map[string]*keyedLimiter),
		now:       now,
		lastSweep: now(),
	}
}

// Allow spends one token for key. When none is available it reports how
// long until one will be, without consuming anything.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || !rule.enabled() {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()
	if now.Sub(l.lastSweep) >= bucketSweepEvery {
		l.sweepLocked(now)
	}
	entry, ok := l.limiters[key]
	if !ok {
		entry = &keyedLimiter{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.limiters[key] = entry
	}
	entry.lastSeen = now

	res := entry.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if wait := res.DelayFrom(now); wait > 0 {
		res.CancelAt(now)
		return false, wait
	}
	return true, 0
}

func (l *RateLimiter) sweepLocked(now time.Time) {
	for key, entry := range l.limiters {
		if now.Sub(entry.lastSeen) >= bucketIdleTTL {
			delete(l.limiters, key)
		}
	}
	l.lastSweep = now
}

func (l *RateLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}

// RateLimit enforces cfg per authenticated user, falling back to client IP
// for anonymous requests.
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

		principal := UserIDFromContext(c)
		if principal == "" {
			principal = "ip:" + c.ClientIP()
		}
		if allowed, wait := cfg.Limiter.Allow(group+"|"+principal, rule); !allowed {
			c.Header("Retry-After", strconv.Itoa(retryAfterSeconds(wait)))
			respond.Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}

// retryAfterSeconds rounds wait up to whole seconds, with a floor of one.
func retryAfterSeconds(wait time.Duration) int {
	secs := int((wait + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
