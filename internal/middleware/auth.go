package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hirokisan/task-tracker-api/internal/constants"
	apierrors "github.com/hirokisan/task-tracker-api/internal/errors"
	"github.com/hirokisan/task-tracker-api/internal/identity"
)

const bearerPrefix = "Bearer "

// RequireAuth verifies the bearer token and stores the subject username and
// raw token in the request context.
func RequireAuth(provider identity.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearerPrefix) {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		rawToken := strings.TrimPrefix(header, bearerPrefix)
		username, err := provider.Verify(c.Request.Context(), rawToken)
		if err != nil {
			apierrors.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyUsername, username)
		c.Set(constants.ContextKeyToken, rawToken)
		c.Next()
	}
}

// GetUsername retrieves the verified subject username from context
func GetUsername(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyUsername)
	if !exists {
		return "", false
	}
	username, ok := value.(string)
	return username, ok && username != ""
}

// GetToken retrieves the raw bearer token from context
func GetToken(c *gin.Context) (string, bool) {
	value, exists := c.Get(constants.ContextKeyToken)
	if !exists {
		return "", false
	}
	token, ok := value.(string)
	return token, ok && token != ""
}
