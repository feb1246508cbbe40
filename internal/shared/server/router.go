package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-match/internal/matches"
	"resume-match/internal/shared/config"
	"resume-match/internal/shared/metrics"
	"resume-match/internal/shared/server/middleware"
	"resume-match/internal/shared/server/respond"
)

// Default request rates per user. Uploads call the analysis provider and get
// a tighter bucket.
var defaultRateLimits = map[string]middleware.RateLimitRule{
	"DEFAULT":                       {Rate: 10, Burst: 30},
	middleware.UploadRateLimitGroup: {Rate: 0.2, Burst: 5},
}

// RouterDeps carries the handlers and auth collaborators the router needs.
type RouterDeps struct {
	Config       config.Config
	Verifier     middleware.TokenVerifier
	Identity     middleware.IdentitySync
	MatchHandler *matches.Handler
	RateLimits   map[string]middleware.RateLimitRule
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	health := func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	}
	r.GET("/health", health)
	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", health)

	rules := deps.RateLimits
	if rules == nil {
		rules = defaultRateLimits
	}

	authed := api.Group("")
	authed.Use(
		middleware.Auth(deps.Verifier, deps.Identity),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:        rules,
			DefaultGroup: "DEFAULT",
			GroupFor:     rateLimitGroup,
		}),
	)
	if deps.MatchHandler != nil {
		deps.MatchHandler.RegisterRoutes(authed)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1"+matches.AnalyzePath {
		return middleware.UploadRateLimitGroup
	}
	return "DEFAULT"
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
