package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AvailabilityChecker reports whether the backing contract can be reached.
type AvailabilityChecker interface {
	Available(ctx context.Context) bool
}

// RequireAvailable rejects requests with 503 while the contract is unreachable.
func RequireAvailable(checker AvailabilityChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !checker.Available(c.Request.Context()) {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "contract not available"})
			return
		}
		c.Next()
	}
}
