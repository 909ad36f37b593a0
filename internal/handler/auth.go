package handler

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireAdmin guards the admin surface with the configured bearer token.
// An empty token keeps the surface locked rather than open.
func RequireAdmin(token string) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(token))

	return func(c *gin.Context) {
		if len(expected) == 0 {
			respondError(c, http.StatusUnauthorized, "admin access is not configured")
			c.Abort()
			return
		}

		header := c.GetHeader("Authorization")
		bearer, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(bearer) == "" {
			respondError(c, http.StatusUnauthorized, "authorization required")
			c.Abort()
			return
		}

		if subtle.ConstantTimeCompare([]byte(strings.TrimSpace(bearer)), expected) != 1 {
			respondError(c, http.StatusUnauthorized, "invalid admin token")
			c.Abort()
			return
		}

		c.Next()
	}
}
