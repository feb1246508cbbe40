package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func serve(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/resumes", h)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/resumes", nil))

	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", resp.Body.String(), err)
	}
	return resp, body
}

func TestSuccessEnvelope(t *testing.T) {
	resp, body := serve(t, func(c *gin.Context) {
		Success(c, "Resumes fetched successfully", gin.H{"data": []string{}})
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if body["success"] != true || body["message"] != "Resumes fetched successfully" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["data"].([]any); !ok {
		t.Fatalf("expected data array, got %v", body["data"])
	}
}

func TestSuccessWithoutMessage(t *testing.T) {
	_, body := serve(t, func(c *gin.Context) {
		Success(c, "", gin.H{"stats": gin.H{"totalResumes": 0}})
	})
	if _, ok := body["message"]; ok {
		t.Fatalf("expected no message key, got %v", body)
	}
}

func TestErrorBodyCarriesOnlyMessage(t *testing.T) {
	resp, body := serve(t, func(c *gin.Context) {
		Error(c, http.StatusNotFound, "not_found", "Resume not found")
	})
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
	if len(body) != 1 || body["error"] != "Resume not found" {
		t.Fatalf("unexpected error body: %v", body)
	}
}

func TestErrorRecordsCodeForRequestLog(t *testing.T) {
	var codes []string
	serve(t, func(c *gin.Context) {
		Error(c, http.StatusTooManyRequests, "rate_limited", "Too many requests, please try again later")
		for _, e := range c.Errors {
			codes = append(codes, e.Error())
		}
	})
	if len(codes) != 1 || codes[0] != "rate_limited" {
		t.Fatalf("expected rate_limited code on context, got %v", codes)
	}
}
