package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/avrorin/auth-api/internal/auth/model"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// userKey is where the guard stores the resolved user in the gin
// context.
const userKey = "auth.user"

// TokenValidator is the slice of the auth service the guard needs.
type TokenValidator interface {
	Validate(ctx context.Context, accessToken string) (model.User, error)
}

// BearerToken extracts the token from an Authorization header. A header
// that does not split into exactly one "Bearer " prefix and a value
// yields no token.
func BearerToken(r *http.Request) string {
	parts := strings.Split(r.Header.Get("Authorization"), "Bearer ")
	if len(parts) != 2 {
		return ""
	}
	return parts[1]
}

// RequireAccessToken is the auth guard stage: it decodes the bearer
// token, resolves the user and stores it for the handler, or fails the
// request with 401.
func RequireAccessToken(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.Request)
		if token == "" {
			log.Warn("request without bearer token",
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is required!"})
			return
		}

		user, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			log.Warn("access token rejected",
				zap.String("path", c.Request.URL.Path), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// UserFromContext returns the user resolved by RequireAccessToken.
func UserFromContext(c *gin.Context) (model.User, bool) {
	v, ok := c.Get(userKey)
	if !ok {
		return model.User{}, false
	}
	user, ok := v.(model.User)
	return user, ok
}
