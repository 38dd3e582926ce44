package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeskytz/date-api/internal/data/model"
	"github.com/codeskytz/date-api/internal/pkg/response"
)

// Authenticator resolves a bearer token to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

// Auth rejects requests without a valid bearer token and stores the
// resolved user on the context under "user_id" and "user".
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "Unauthenticated.")
			c.Abort()
			return
		}
		token := strings.TrimPrefix(header, "Bearer ")

		user, err := authn.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Unauthorized(c, "Unauthenticated.")
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", user)
		c.Next()
	}
}
