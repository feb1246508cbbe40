package respond

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-match/internal/shared/telemetry"
)

// Context keys shared with the middleware package.
const (
	RequestIDKey = "requestId"
	UserIDKey    = "userId"
)

// ErrorResponse is the error body returned by every endpoint.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Error aborts with {"error": message}. code is a stable machine label that
// never reaches the client; it is attached to the gin context so the request
// log carries it, and server errors are logged here with their context.
func Error(c *gin.Context, status int, code, message string) {
	_ = c.Error(errors.New(code)).SetType(gin.ErrorTypePrivate)

	if status >= http.StatusInternalServerError {
		telemetry.Error("http.server_error", map[string]any{
			"status":     status,
			"code":       code,
			"message":    message,
			"route":      c.FullPath(),
			"request_id": c.GetString(RequestIDKey),
			"user_id":    c.GetString(UserIDKey),
		})
	}
	c.AbortWithStatusJSON(status, ErrorResponse{Error: message})
}
