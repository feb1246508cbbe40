package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func uploadGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/resumes/analyze" {
		return UploadRateLimitGroup
	}
	return "DEFAULT"
}

func newLimitedRouter(now time.Time, rules map[string]RateLimitRule) *gin.Engine {
	limiter := NewRateLimiter(func() time.Time { return now })
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(userIDKey, "user-1")
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor:     uploadGroup,
		Limiter:      limiter,
		Rules:        rules,
	}))
	r.GET("/api/v1/resumes", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.POST("/api/v1/resumes/analyze", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRateLimitUploadGroupIsTighter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(now, map[string]RateLimitRule{
		"DEFAULT":            {Rate: 5, Burst: 10},
		UploadRateLimitGroup: {Rate: 1, Burst: 2},
	})

	for i := 0; i < 2; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/analyze", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("upload %d expected 200, got %d", i+1, resp.Code)
		}
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/analyze", nil))
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("upload 3 expected 429, got %d", resp.Code)
	}

	for i := 0; i < 3; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("list %d expected 200 after uploads were limited, got %d", i+1, resp.Code)
		}
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(now, map[string]RateLimitRule{
		"DEFAULT": {Rate: 1, Burst: 1},
	})

	resp1 := httptest.NewRecorder()
	r.ServeHTTP(resp1, httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil))
	if resp1.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp1.Code)
	}

	resp2 := httptest.NewRecorder()
	r.ServeHTTP(resp2, httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil))
	if resp2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp2.Code)
	}
	if resp2.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After 1, got %q", resp2.Header().Get("Retry-After"))
	}

	var payload map[string]any
	if err := json.NewDecoder(resp2.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if _, ok := payload["error"].(string); !ok {
		t.Fatalf("expected error message, got %v", payload)
	}
}

func TestRateLimitUnknownGroupPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := newLimitedRouter(now, map[string]RateLimitRule{
		"DEFAULT": {Rate: 1, Burst: 1},
	})

	for i := 0; i < 5; i++ {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/api/v1/resumes/analyze", nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("upload %d expected 200 with no upload rule, got %d", i+1, resp.Code)
		}
	}
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 1, Burst: 1}

	limiter.Allow("DEFAULT|user-1", rule)
	limiter.Allow("UPLOAD|user-2", rule)
	if got := limiter.size(); got != 2 {
		t.Fatalf("expected 2 buckets, got %d", got)
	}

	now = now.Add(bucketIdleTTL + time.Second)
	if ok, _ := limiter.Allow("DEFAULT|user-3", rule); !ok {
		t.Fatalf("fresh principal must be allowed")
	}
	if got := limiter.size(); got != 1 {
		t.Fatalf("expected idle buckets to be evicted, got %d", got)
	}
}

func TestRateLimiterRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := RateLimitRule{Rate: 0.5, Burst: 1}

	if ok, _ := limiter.Allow("UPLOAD|user-1", rule); !ok {
		t.Fatalf("first request must pass")
	}
	ok, wait := limiter.Allow("UPLOAD|user-1", rule)
	if ok || wait != 2*time.Second {
		t.Fatalf("expected denial with 2s wait, got ok=%v wait=%s", ok, wait)
	}

	// a denied call must not push the refill further out
	now = now.Add(2 * time.Second)
	if ok, _ := limiter.Allow("UPLOAD|user-1", rule); !ok {
		t.Fatalf("expected a token after the refill interval")
	}
}

func TestRetryAfterSeconds(t *testing.T) {
	cases := map[time.Duration]int{
		0:                       1,
		time.Millisecond:        1,
		time.Second:             1,
		1500 * time.Millisecond: 2,
		5 * time.Second:         5,
	}
	for wait, want := range cases {
		if got := retryAfterSeconds(wait); got != want {
			t.Fatalf("retryAfterSeconds(%s) = %d, want %d", wait, got, want)
		}
	}
}
