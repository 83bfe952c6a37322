package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/model"
)

const (
	// AccessCookie is the cookie carrying the access token.
	AccessCookie = "access_token"
	// RefreshCookie is the cookie carrying the refresh token.
	RefreshCookie = "refresh_token"

	userIDKey = "user_id"
)

// TokenValidator checks a presented token against signature, revocation and
// expiry.
type TokenValidator interface {
	Validate(ctx context.Context, raw string, tokenType model.TokenType) (model.AuthToken, error)
}

// Authenticate resolves the access token from the access cookie or the
// Authorization header and binds the user id to the request context. All
// failure modes produce the same generic 401 so a probing client cannot
// distinguish missing, malformed, revoked and expired tokens.
func Authenticate(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := extractAccessToken(c)
		if raw == "" {
			abortUnauthenticated(c)
			return
		}

		record, err := tokens.Validate(c.Request.Context(), raw, model.TokenTypeAccess)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		c.Set(userIDKey, record.UserID)
		c.Next()
	}
}

// RequireAdmin allows only users with the admin role past. Must run after
// Authenticate.
func RequireAdmin(users model.UserStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			abortUnauthenticated(c)
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			abortUnauthenticated(c)
			return
		}

		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}

		c.Next()
	}
}

// UserID returns the authenticated user's id from the request context.
func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(userIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

func extractAccessToken(c *gin.Context) string {
	if cookie, err := c.Cookie(AccessCookie); err == nil && cookie != "" {
		return cookie
	}
	return extractBearer(c.GetHeader("Authorization"))
}

func extractBearer(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

func abortUnauthenticated(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
}
