package matches

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-match/internal/shared/server/middleware"
	"resume-match/internal/shared/server/respond"
	"resume-match/internal/shared/telemetry"
)

// multipartOverhead leaves room for the job description and multipart framing.
const multipartOverhead = 1 << 20

// Handler wires HTTP handlers to the match service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// AnalyzePath is the upload route, exposed for rate limit grouping.
const AnalyzePath = "/resumes/analyze"

// RegisterRoutes attaches match routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST(AnalyzePath, h.analyze)
	rg.GET("/resumes", h.listMatches)
	rg.GET("/resumes/stats", h.getStats)
	rg.GET("/resumes/:id", h.getMatch)
	rg.DELETE("/resumes/:id", h.deleteMatch)
}

func requesterFromContext(c *gin.Context) Requester {
	return Requester{
		ID:    middleware.UserIDFromContext(c),
		Name:  middleware.UserNameFromContext(c),
		Email: middleware.UserEmailFromContext(c),
	}
}

func (h *Handler) analyze(c *gin.Context) {
	req := requesterFromContext(c)
	limit := h.Svc.Intake.MaxSize
	if limit <= 0 {
		limit = MaxUploadSize
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	var upload *Upload
	fileHeader, err := c.FormFile("resume")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respond.Error(c, http.StatusBadRequest, "file_too_large", "Resume file exceeds the 10MB limit")
			return
		}
	} else {
		f, err := fileHeader.Open()
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "Unable to read resume file")
			return
		}
		defer f.Close()
		upload = &Upload{
			FileName:    fileHeader.Filename,
			ContentType: fileHeader.Header.Get("Content-Type"),
			Body:        f,
		}
	}
	jobDescription := c.PostForm("jobDescription")

	out, err := h.Svc.Submit(c.Request.Context(), upload, jobDescription, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrMissingFile):
			respond.Error(c, http.StatusBadRequest, "validation_error", "No resume file provided")
		case errors.Is(err, ErrMissingJobDescription):
			respond.Error(c, http.StatusBadRequest, "validation_error", "No job description provided")
		case errors.Is(err, ErrFileTooLarge):
			respond.Error(c, http.StatusBadRequest, "file_too_large", "Resume file exceeds the 10MB limit")
		case errors.Is(err, ErrInvalidFileName):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid resume file name")
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid request")
		default:
			telemetry.Error("match.analyze_failed", map[string]any{
				"request_id": middleware.RequestIDFromContext(c),
				"user_id":    req.ID,
				"error":      err,
			})
			respond.Error(c, http.StatusInternalServerError, "internal_error", "Analysis failed")
		}
		return
	}

	c.Set(middleware.MatchIDKey, out.Record.ID)
	respond.OK(c, gin.H{
		"message":    "Analysis completed successfully",
		"id":         out.Record.ID,
		"analysis":   out.Record.Analysis,
		"matchScore": out.Record.MatchScore,
	})
}

func (h *Handler) getMatch(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.MatchIDKey, id)

	view, err := h.Svc.View(c.Request.Context(), id, requesterFromContext(c))
	if err != nil {
		h.writeRecordError(c, err, "Not authorized to view this resume", "Failed to fetch resume data")
		return
	}
	respond.OK(c, view)
}

func (h *Handler) listMatches(c *gin.Context) {
	list, err := h.Svc.List(c.Request.Context(), requesterFromContext(c))
	if err != nil {
		telemetry.Error("match.list_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
			"error":      err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch resumes")
		return
	}
	respond.Success(c, "Resumes fetched successfully", gin.H{"data": list})
}

func (h *Handler) getStats(c *gin.Context) {
	stats, err := h.Svc.Stats(c.Request.Context(), requesterFromContext(c))
	if err != nil {
		telemetry.Error("match.stats_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
			"error":      err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Failed to fetch resume statistics")
		return
	}
	respond.Success(c, "", gin.H{"stats": stats})
}

func (h *Handler) deleteMatch(c *gin.Context) {
	id := c.Param("id")
	c.Set(middleware.MatchIDKey, id)

	if err := h.Svc.Delete(c.Request.Context(), id, requesterFromContext(c)); err != nil {
		h.writeRecordError(c, err, "Not authorized to delete this resume", "Failed to delete resume")
		return
	}
	respond.Success(c, "Resume deleted successfully", nil)
}

func (h *Handler) writeRecordError(c *gin.Context, err error, forbiddenMessage, internalMessage string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Resume not found")
	case errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusForbidden, "forbidden", forbiddenMessage)
	default:
		telemetry.Error("match.record_failed", map[string]any{
			"request_id": middleware.RequestIDFromContext(c),
			"user_id":    middleware.UserIDFromContext(c),
			"match_id":   c.Param("id"),
			"error":      err,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", internalMessage)
	}
}
