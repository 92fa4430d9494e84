package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chef-fhe/backend/internal/middleware"
	"github.com/pageza/chef-fhe/backend/internal/models"
	"github.com/pageza/chef-fhe/backend/internal/service"
)

// DashboardHandler serves per-wallet statistics and store maintenance reports
type DashboardHandler struct {
	recipeService service.IRecipeService
	authService   service.IAuthService
	admins        []string
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(recipeService service.IRecipeService, authService service.IAuthService, admins []string) *DashboardHandler {
	return &DashboardHandler{
		recipeService: recipeService,
		authService:   authService,
		admins:        admins,
	}
}

// RegisterRoutes registers the dashboard routes and the admin routes, which
// only wallets in the admin list may call
func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)

	dashboard := router.Group("/dashboard", auth)
	{
		dashboard.GET("/stats", h.GetStats)
	}

	admin := router.Group("/admin", auth, middleware.RequireAdmin(h.admins))
	{
		admin.GET("/integrity", h.CheckIntegrity)
	}
}

// GetStats counts the caller's own requests by status
func (h *DashboardHandler) GetStats(c *gin.Context) {
	address, ok := middleware.WalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet not authenticated"})
		return
	}

	mine, err := h.recipeService.List(c.Request.Context(), models.RecipeFilters{Owner: address})
	if err != nil {
		respondError(c, err)
		return
	}
	var stats models.RecipeStats
	for _, r := range mine {
		stats.Add(r)
	}
	c.JSON(http.StatusOK, stats)
}

// CheckIntegrity reports key-list entries without records and records missing from the key list
func (h *DashboardHandler) CheckIntegrity(c *gin.Context) {
	report, err := h.recipeService.CheckIntegrity(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": report.OK(), "report": report})
}
