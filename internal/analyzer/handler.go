package analyzer

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"resume-match/internal/shared/server/respond"
	"resume-match/internal/shared/telemetry"
)

// MaxResumeSize caps the resume part accepted by the provider.
const MaxResumeSize = 10 << 20

// Handler serves the provider contract.
type Handler struct {
	Engine *Engine
}

// RegisterRoutes attaches the health and analysis routes.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.health)
	r.POST("/analyze-resume-jd", h.analyze)
}

func (h *Handler) health(c *gin.Context) {
	respond.OK(c, gin.H{"status": "AI Service Running!"})
}

func (h *Handler) analyze(c *gin.Context) {
	start := time.Now()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxResumeSize+1<<20)

	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "file_too_large", "Resume file too large")
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "No resume file provided")
		return
	}
	jobDescription, ok := c.GetPostForm("jobDescription")
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No job description provided")
		return
	}
	if strings.TrimSpace(fileHeader.Filename) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No selected file")
		return
	}
	if !SupportedExtension(fileHeader.Filename) {
		respond.Error(c, http.StatusBadRequest, "unsupported_type", "Unsupported file type. Please upload PDF or DOCX.")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read resume file")
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read resume file")
		return
	}

	text, err := ExtractText(data, fileHeader.Filename)
	if err != nil {
		telemetry.Error("analyzer.extract_failed", map[string]any{
			"file_name": fileHeader.Filename,
			"error":     err,
		})
		respond.Error(c, http.StatusInternalServerError, "extract_failed", "Failed to extract text from resume.")
		return
	}

	report := h.Engine.Analyze(c.Request.Context(), text, jobDescription)
	telemetry.Info("analyzer.completed", map[string]any{
		"file_name":   fileHeader.Filename,
		"match_score": report.MatchScore,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	respond.OK(c, report)
}
