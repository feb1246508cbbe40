package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-match/internal/shared/server/respond"
)

const (
	requestIDKey      = respond.RequestIDKey
	requestIDHeader   = "X-Request-Id"
	maxInboundIDBytes = 128
)

// RequestID tags every request with an id, reusing a well-formed inbound
// X-Request-Id so the analysis provider and API logs can be joined.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if !validRequestID(id) {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

// RequestIDFromContext fetches the request ID stored by RequestID middleware.
func RequestIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	return c.GetString(requestIDKey)
}

func validRequestID(id string) bool {
	if id == "" || len(id) > maxInboundIDBytes {
		return false
	}
	for i := 0; i < len(id); i++ {
		ch := id[i]
		if ch < 0x21 || ch > 0x7e {
			return false
		}
	}
	return true
}
