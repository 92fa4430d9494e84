package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chef-fhe/backend/internal/service"
)

// Version is reported by the health endpoint.
const Version = "v1.0.0"

// HealthHandler reports liveness and contract availability.
type HealthHandler struct {
	recipeService service.IRecipeService
}

func NewHealthHandler(recipeService service.IRecipeService) *HealthHandler {
	return &HealthHandler{recipeService: recipeService}
}

// HealthCheck returns the health status of the API
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	available := h.recipeService.Available(c.Request.Context())
	status := "healthy"
	if !available {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             status,
		"message":            "Private Chef API is running",
		"version":            Version,
		"contract_available": available,
		"contract_address":   h.recipeService.ContractAddress(),
	})
}
