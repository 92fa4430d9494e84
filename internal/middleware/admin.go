package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequireAdmin only lets through wallets listed in admins. It must run after
// AuthMiddleware. An empty list closes the route to everyone.
func RequireAdmin(admins []string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(admins))
	for _, a := range admins {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			allowed[a] = struct{}{}
		}
	}
	return func(c *gin.Context) {
		address, ok := WalletAddress(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "wallet not authenticated"})
			return
		}
		if _, ok := allowed[strings.ToLower(address)]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin wallet required"})
			return
		}
		c.Next()
	}
}
