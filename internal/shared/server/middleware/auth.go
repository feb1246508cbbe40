package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-match/internal/shared/auth"
	"resume-match/internal/shared/server/respond"
	"resume-match/internal/shared/telemetry"
)

const (
	userIDKey    = respond.UserIDKey
	userEmailKey = "userEmail"
	userNameKey  = "userName"
)

// TokenVerifier validates a bearer token.
type TokenVerifier interface {
	Verify(token string) (auth.Claims, error)
}

// IdentitySync records the identity of an authenticated caller.
type IdentitySync interface {
	SyncIdentity(ctx context.Context, id, email, name string) error
}

// Auth requires a bearer token and stores the caller identity in context.
// When sync is set the identity is recorded for owner lookups. Sync failures
// are logged and never block the request.
func Auth(verifier TokenVerifier, sync IdentitySync) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "Not authorized, no token")
			return
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			code := "token_invalid"
			if errors.Is(err, auth.ErrExpiredToken) {
				code = "token_expired"
			}
			respond.Error(c, http.StatusUnauthorized, code, "Not authorized, token failed")
			return
		}

		setIdentity(c, claims)
		if sync != nil {
			if err := sync.SyncIdentity(c.Request.Context(), claims.Sub, claims.Email, claims.Name); err != nil {
				telemetry.Warn("auth.identity_sync_failed", map[string]any{
					"request_id": RequestIDFromContext(c),
					"user_id":    claims.Sub,
					"error":      err,
				})
			}
		}
		c.Next()
	}
}

// bearerToken extracts the credentials of a Bearer authorization header.
// The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func setIdentity(c *gin.Context, claims auth.Claims) {
	c.Set(userIDKey, claims.Sub)
	if claims.Email != "" {
		c.Set(userEmailKey, claims.Email)
	}
	if claims.Name != "" {
		c.Set(userNameKey, claims.Name)
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	return stringFromContext(c, userIDKey)
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	return stringFromContext(c, userEmailKey)
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	return stringFromContext(c, userNameKey)
}

func stringFromContext(c *gin.Context, key string) string {
	if c == nil {
		return ""
	}
	return c.GetString(key)
}
