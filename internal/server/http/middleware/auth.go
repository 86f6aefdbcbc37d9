package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/fosgateway/internal/domain/errors"
	"github.com/polkiloo/fosgateway/internal/domain/model"
)

const (
	// SessionContextKey is a gin context key for the authenticated session.
	SessionContextKey = "session"
	// TokenContextKey is a gin context key for the raw session token.
	TokenContextKey = "sessionToken"
	authCookieName  = "fos_session"
)

// SessionResolver turns a bearer token into a live session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*model.Session, error)
}

// AuthRequired ensures a live session is attached before the handler runs.
func AuthRequired(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}

		session, err := resolver.ResolveSession(c.Request.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, domainErrors.ErrSessionExpired):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session_expired"})
			default:
				_ = c.Error(err)
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "service_unavailable"})
			}
			return
		}

		c.Set(SessionContextKey, session)
		c.Set(TokenContextKey, token)
		c.Next()
	}
}

// RequireRole rejects sessions whose role is not among roles. It must run
// after AuthRequired.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		val, _ := c.Get(SessionContextKey)
		session, _ := val.(*model.Session)
		if session == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
			return
		}
		if !session.HasRole(roles...) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(strings.ToLower(authHeader), "bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}

	if cookie, err := c.Cookie(authCookieName); err == nil {
		return cookie
	}
	return ""
}

// SetAuthCookie writes the session token cookie, expiring with the session.
func SetAuthCookie(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := 0
	if !expiresAt.IsZero() {
		maxAge = int(time.Until(expiresAt).Seconds())
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(authCookieName, token, maxAge, "/", "", false, true)
	c.Header("Authorization", "Bearer "+token)
}

// ClearAuthCookie removes the session token cookie.
func ClearAuthCookie(c *gin.Context) {
	c.SetCookie(authCookieName, "", -1, "/", "", false, true)
}
