package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestRenderIncludesCountersAndHistogram(t *testing.T) {
	before := matchFallbackTotal.Load()
	IncMatchFallback()
	ObserveProviderDuration(300 * time.Millisecond)

	out := Render()
	for _, want := range []string{
		"# TYPE match_created_total counter",
		"# TYPE provider_duration_ms histogram",
		`provider_duration_ms_bucket{le="+Inf"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if matchFallbackTotal.Load() != before+1 {
		t.Fatalf("expected fallback counter to increase")
	}
}

func TestCreatedCounterIsLabelledByStatus(t *testing.T) {
	before := matchCreated.Load("Good Match")
	IncMatchCreated("Good Match")
	IncMatchCreated("Good Match")
	IncMatchCreated(`Odd "label"`)
	ObserveMatchScore(72)

	if got := matchCreated.Load("Good Match"); got != before+2 {
		t.Fatalf("expected +2 for Good Match, got %d", got-before)
	}
	out := Render()
	for _, want := range []string{
		`match_created_total{status="Good Match"}`,
		`match_created_total{status="Odd \"label\""}`,
		`match_score_bucket{le="85"}`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestHistogramBucketsAreCumulative(t *testing.T) {
	h := newHistogram([]float64{10, 100})
	h.Observe(5)
	h.Observe(50)
	h.Observe(500)

	snap := h.Snapshot()
	if snap.count != 3 || snap.sum != 555 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.counts[0] != 1 || snap.counts[1] != 1 {
		t.Fatalf("unexpected bucket counts: %v", snap.counts)
	}

	var buf bytes.Buffer
	writeHistogram(&buf, "x", "help", snap)
	out := buf.String()
	for _, want := range []string{`x_bucket{le="10"} 1`, `x_bucket{le="100"} 2`, `x_bucket{le="+Inf"} 3`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
}

func TestHandlerServesText(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/metrics", Handler())

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.HasPrefix(resp.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("unexpected content type %q", resp.Header().Get("Content-Type"))
	}
}
