package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/taskpilot/taskpilot/backend/go-services/internal/googleauth"
)

// PayloadKey is the gin context key holding the verified identity payload.
const PayloadKey = "identity"

// AuthMiddleware returns a Gin middleware that verifies Bearer Google ID
// tokens using the provided verifier and stores the verified payload in
// the request context.
func AuthMiddleware(ver googleauth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ver == nil {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "token verification not configured"})
			return
		}
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		payload, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		c.Set(PayloadKey, payload)
		c.Next()
	}
}

// IdentityFromContext returns the verified payload set by AuthMiddleware.
func IdentityFromContext(c *gin.Context) (*googleauth.Payload, bool) {
	v, ok := c.Get(PayloadKey)
	if !ok {
		return nil, false
	}
	p, ok := v.(*googleauth.Payload)
	return p, ok
}
