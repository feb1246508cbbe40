package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-match/internal/matches"
	"resume-match/internal/shared/auth"
	"resume-match/internal/shared/config"
	"resume-match/internal/shared/server/middleware"
	localstore "resume-match/internal/shared/storage/object/local"
)

func newTestRouter(t *testing.T, limits map[string]middleware.RateLimitRule) (*gin.Engine, *auth.Verifier) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	verifier, err := auth.NewVerifier("router-secret", "dev")
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	store := localstore.New(t.TempDir())
	svc := &matches.Service{
		Repo:   matches.NewMemoryRepo(),
		Intake: &matches.Intake{Store: store, MaxSize: matches.MaxUploadSize},
		Store:  store,
	}
	r := NewRouter(RouterDeps{
		Config:       config.Config{Env: "dev", CORSAllowOrigin: []string{"http://localhost:5173"}},
		Verifier:     verifier,
		MatchHandler: matches.NewHandler(svc),
		RateLimits:   limits,
	})
	return r, verifier
}

func bearer(t *testing.T, v *auth.Verifier, userID string) string {
	t.Helper()
	token, err := v.Sign(auth.Claims{Sub: userID, Email: userID + "@example.com"})
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + token
}

func TestHealthAndMetricsArePublic(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, path := range []string{"/health", "/api/v1/health"} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, path, nil))
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "match_created_total") {
		t.Fatalf("expected match counters in metrics output, got %q", resp.Body.String())
	}
}

func TestMatchRoutesRequireToken(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/api/v1/resumes"},
		{http.MethodGet, "/api/v1/resumes/stats"},
		{http.MethodPost, "/api/v1/resumes/analyze"},
		{http.MethodDelete, "/api/v1/resumes/abc"},
	} {
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401, got %d", tc.method, tc.path, resp.Code)
		}
	}
}

func TestUploadRateLimitIsSeparateFromReads(t *testing.T) {
	r, v := newTestRouter(t, map[string]middleware.RateLimitRule{
		middleware.UploadRateLimitGroup: {Rate: 0.001, Burst: 1},
	})
	token := bearer(t, v, "user-1")

	post := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/resumes/analyze", strings.NewReader("{}"))
		req.Header.Set("Authorization", token)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		return resp.Code
	}

	if code := post(); code != http.StatusBadRequest {
		t.Fatalf("first upload: expected 400 validation error, got %d", code)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Fatalf("second upload: expected 429, got %d", code)
	}

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/resumes", nil)
		req.Header.Set("Authorization", token)
		resp := httptest.NewRecorder()
		r.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("read %d: expected 200, got %d", i, resp.Code)
		}
	}
}

func TestAddr(t *testing.T) {
	cases := map[string]string{"": ":8080", "9000": ":9000", ":7000": ":7000"}
	for in, want := range cases {
		if got := Addr(in); got != want {
			t.Fatalf("Addr(%q) = %q, want %q", in, got, want)
		}
	}
}
