package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"resume-match/internal/shared/server/respond"
	"resume-match/internal/shared/telemetry"
)

// Recovery converts a handler panic into a logged 500. http.ErrAbortHandler
// is re-raised so net/http can drop the connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			telemetry.L().Error("panic",
				zap.String("request_id", RequestIDFromContext(c)),
				zap.String("user_id", UserIDFromContext(c)),
				zap.String("match_id", c.GetString(MatchIDKey)),
				zap.String("route", c.FullPath()),
				zap.String("method", c.Request.Method),
				zap.String("error", fmt.Sprint(rec)),
				zap.Stack("stack"),
			)
			if c.Writer.Written() {
				c.Abort()
				return
			}
			respond.Error(c, http.StatusInternalServerError, "panic", "Server error")
		}()
		c.Next()
	}
}
