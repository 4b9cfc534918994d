package middleware

import (
	"crypto_portfolio/internal/utils" // Token utility functions
	"strings"                         // String manipulation

	"github.com/gin-gonic/gin" // Gin web framework
)

// ClerkIDKey is the context key under which the extracted identity is stored
const ClerkIDKey = "clerkID"

// IdentityMiddleware extracts the Clerk user ID from a Bearer token when
// one is present and stores it in the request context. It never rejects a
// request: authentication is the identity provider's job, and requests
// that name the user explicitly need no token at all.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		// Only attempt extraction for a well-formed Bearer header
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr := strings.TrimPrefix(authHeader, "Bearer ") // Extract the token string
			// Decode the token and keep the subject if present
			if clerkID, err := utils.ParseIdentityToken(tokenStr); err == nil {
				c.Set(ClerkIDKey, clerkID) // Store clerkID in context
			}
		}
		c.Next() // Proceed to the next handler
	}
}
