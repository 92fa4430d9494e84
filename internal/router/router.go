package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/internal/api"
	"github.com/pageza/chef-fhe/backend/internal/middleware"
)

// SetupRouter configures the application middleware chain and routes
func SetupRouter(allowedOrigins []string, deps api.Deps, logger *zap.Logger) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.CORS(allowedOrigins))

	api.RegisterRoutes(router, deps)

	return router
}
