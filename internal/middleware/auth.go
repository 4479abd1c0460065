package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
)

// Context keys under which the authenticated user of each role is stored.
const (
	AdminKey   = "admin"
	TeacherKey = "teacher"
	StudentKey = "student"
)

const AccessTokenCookie = "accessToken"

// Authenticator resolves an access token to a user of one role.
type Authenticator[T any] interface {
	Authenticate(ctx context.Context, accessToken string) (*T, error)
}

// RequireAccount rejects requests without a valid access token for the
// role served by accounts, and stores the user under key otherwise.
func RequireAccount[T any](accounts Authenticator[T], key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := accounts.Authenticate(c.Request.Context(), AccessToken(c))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(key, user)
		c.Next()
	}
}

// AccessToken reads the token from the accessToken cookie, falling back to
// the Authorization header.
func AccessToken(c *gin.Context) string {
	if token, err := c.Cookie(AccessTokenCookie); err == nil && token != "" {
		return token
	}
	authHeader := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// Current returns the user RequireAccount stored under key.
func Current[T any](c *gin.Context, key string) *T {
	user, ok := c.Get(key)
	if !ok {
		return nil
	}
	typed, _ := user.(*T)
	return typed
}
