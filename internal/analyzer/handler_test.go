package analyzer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAnalyzerRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	(&Handler{Engine: &Engine{}}).RegisterRoutes(router)
	return router
}

func analyzeRequest(t *testing.T, fileName string, data []byte, jd *string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := w.CreateFormFile("resume", fileName)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if jd != nil {
		if err := w.WriteField("jobDescription", *jd); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/analyze-resume-jd", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	resp := httptest.NewRecorder()
	newAnalyzerRouter().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/", nil))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
}

func TestAnalyzeDocx(t *testing.T) {
	jd := "Go Kubernetes Kafka"
	data := buildDocx(t, "Jane Doe", "Skills", "Go and Kubernetes")

	resp := httptest.NewRecorder()
	newAnalyzerRouter().ServeHTTP(resp, analyzeRequest(t, "cv.docx", data, &jd))
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var report Report
	if err := json.Unmarshal(resp.Body.Bytes(), &report); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(report.Structured.Keywords) != 2 {
		t.Fatalf("expected 2 matched keywords, got %+v", report.Structured.Keywords)
	}
	if len(report.Structured.MissingKeywords) != 1 || report.Structured.MissingKeywords[0] != "kafka" {
		t.Fatalf("unexpected missing keywords %v", report.Structured.MissingKeywords)
	}
	if report.MatchScore <= 0 || report.MatchScore > 100 || report.Feedback == "" {
		t.Fatalf("unexpected report: %+v", report)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	jd := "Go"
	tests := []struct {
		name     string
		req      func(t *testing.T) *http.Request
		wantCode int
		wantErr  string
	}{
		{
			name:     "missing file",
			req:      func(t *testing.T) *http.Request { return analyzeRequest(t, "", nil, &jd) },
			wantCode: http.StatusBadRequest,
			wantErr:  "No resume file provided",
		},
		{
			name:     "missing description",
			req:      func(t *testing.T) *http.Request { return analyzeRequest(t, "cv.pdf", []byte("x"), nil) },
			wantCode: http.StatusBadRequest,
			wantErr:  "No job description provided",
		},
		{
			name:     "unsupported type",
			req:      func(t *testing.T) *http.Request { return analyzeRequest(t, "cv.txt", []byte("x"), &jd) },
			wantCode: http.StatusBadRequest,
			wantErr:  "Unsupported file type. Please upload PDF or DOCX.",
		},
		{
			name:     "unreadable pdf",
			req:      func(t *testing.T) *http.Request { return analyzeRequest(t, "cv.pdf", []byte("garbage"), &jd) },
			wantCode: http.StatusInternalServerError,
			wantErr:  "Failed to extract text from resume.",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			resp := httptest.NewRecorder()
			newAnalyzerRouter().ServeHTTP(resp, tt.req(t))
			if resp.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d", tt.wantCode, resp.Code)
			}
			var body map[string]string
			if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body["error"] != tt.wantErr {
				t.Fatalf("expected %q, got %q", tt.wantErr, body["error"])
			}
		})
	}
}
