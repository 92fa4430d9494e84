package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chef-fhe/backend/internal/types"
)

// Context keys set by AuthMiddleware.
const (
	ContextWalletAddress = "wallet_address"
	ContextTokenClaims   = "token_claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(token string) (*types.TokenClaims, error)
}

// AuthMiddleware creates a middleware that validates wallet session tokens
func AuthMiddleware(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := validator.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		c.Set(ContextWalletAddress, strings.ToLower(claims.Address))
		c.Set(ContextTokenClaims, claims)
		c.Next()
	}
}

// WalletAddress returns the authenticated wallet address, if any.
func WalletAddress(c *gin.Context) (string, bool) {
	v, ok := c.Get(ContextWalletAddress)
	if !ok {
		return "", false
	}
	address, ok := v.(string)
	return address, ok && address != ""
}
