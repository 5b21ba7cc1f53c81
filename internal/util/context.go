package util

import (
	"github.com/gin-gonic/gin"
)

// ContextUserIDKey is where the auth middleware stores the authenticated identity.
const ContextUserIDKey = "user_id"

// GetUserIDFromContext extracts the user ID from the Gin context.
// Returns the user ID and true if found, or empty string and false if not authenticated.
// If the user is not authenticated, it automatically responds with 401 Unauthorized.
func GetUserIDFromContext(c *gin.Context) (string, bool) {
	userID := OptionalUserID(c)
	if userID == "" {
		RespondUnauthorized(c)
		return "", false
	}
	return userID, true
}

// OptionalUserID returns the authenticated user ID, or "" for anonymous requests.
func OptionalUserID(c *gin.Context) string {
	userID, exists := c.Get(ContextUserIDKey)
	if !exists {
		return ""
	}
	userIDStr, _ := userID.(string)
	return userIDStr
}
