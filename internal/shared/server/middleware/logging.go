package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"resume-match/internal/shared/telemetry"
)

// MatchIDKey is set by handlers that touch a single match record.
const MatchIDKey = "matchId"

// quietPaths are probe endpoints logged at debug level only.
var quietPaths = map[string]bool{
	"/health":        true,
	"/api/v1/health": true,
	"/metrics":       true,
}

// Logging writes one request.complete line per request. The level follows
// the response status: 5xx at error, 4xx at warn, everything else at info.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("request_id", RequestIDFromContext(c)),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
			zap.Int("bytes", c.Writer.Size()),
			zap.String("user_id", UserIDFromContext(c)),
			zap.String("client_ip", c.ClientIP()),
		}
		if matchID := c.GetString(MatchIDKey); matchID != "" {
			fields = append(fields, zap.String("match_id", matchID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		if ce := telemetry.L().Check(requestLevel(c.Request.URL.Path, status), "request.complete"); ce != nil {
			ce.Write(fields...)
		}
	}
}

func requestLevel(path string, status int) zapcore.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return zapcore.ErrorLevel
	case status >= http.StatusBadRequest:
		return zapcore.WarnLevel
	case quietPaths[path]:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}
