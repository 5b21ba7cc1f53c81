package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/verity/backend/internal/models"
	"github.com/verity/backend/internal/util"
)

// TokenValidator resolves a bearer token to the account it was issued for
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*models.User, error)
}

// RequireAuth rejects requests without a valid bearer token with 401. On
// success the user ID and user are stored on the context. A user already
// resolved by OptionalAuth earlier in the chain is reused.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get("user"); ok {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			util.RespondUnauthorized(c, "authorization token required")
			c.Abort()
			return
		}

		user, err := validator.ValidateToken(c.Request.Context(), token)
		if err != nil {
			util.RespondWithError(c, err)
			c.Abort()
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and lets
// the request through anonymously otherwise. A bad token is not an error here.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if user, err := validator.ValidateToken(c.Request.Context(), token); err == nil {
				setUser(c, user)
			}
		}
		c.Next()
	}
}

func setUser(c *gin.Context, user *models.User) {
	c.Set(util.ContextUserIDKey, user.ID)
	c.Set("user", user)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
