package api

import (
	"github.com/gin-gonic/gin"

	"github.com/pageza/chef-fhe/backend/internal/middleware"
	"github.com/pageza/chef-fhe/backend/internal/service"
)

// Deps are the services and limiters the HTTP layer is built from.
type Deps struct {
	RecipeService  service.IRecipeService
	AuthService    service.IAuthService
	SubmitLimiter  *middleware.RateLimiter
	DecryptLimiter *middleware.RateLimiter
	// AdminAddresses may call the store maintenance routes.
	AdminAddresses []string
}

// RegisterRoutes registers all API routes on router.
func RegisterRoutes(router *gin.Engine, deps Deps) {
	health := NewHealthHandler(deps.RecipeService)
	router.GET("/health", health.HealthCheck)
	router.GET("/api/health", health.HealthCheck)

	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(deps.AuthService).RegisterRoutes(v1)
		NewRecipeHandlerWithRateLimit(deps.RecipeService, deps.AuthService, deps.SubmitLimiter, deps.DecryptLimiter).RegisterRoutes(v1)
		NewDashboardHandler(deps.RecipeService, deps.AuthService, deps.AdminAddresses).RegisterRoutes(v1)
	}
}
