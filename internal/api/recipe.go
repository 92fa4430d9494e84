package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chef-fhe/backend/internal/middleware"
	"github.com/pageza/chef-fhe/backend/internal/models"
	"github.com/pageza/chef-fhe/backend/internal/service"
	"github.com/pageza/chef-fhe/backend/internal/types"
)

// Transaction banner messages.
const (
	MsgSubmitted        = "Encrypted dietary data submitted securely!"
	MsgGenerated        = "FHE recipe generation completed!"
	MsgRejected         = "Recipe rejected!"
	MsgSubmissionFailed = "Submission failed: "
	MsgGenerationFailed = "Generation failed: "
	MsgRejectionFailed  = "Rejection failed: "
	MsgDecryptNotice    = "This recipe was decrypted for your wallet session and is shown only to you"
)

type RecipeHandler struct {
	recipeService  service.IRecipeService
	authService    service.IAuthService
	submitLimiter  *middleware.RateLimiter
	decryptLimiter *middleware.RateLimiter
}

func NewRecipeHandler(recipeService service.IRecipeService, authService service.IAuthService) *RecipeHandler {
	return &RecipeHandler{
		recipeService: recipeService,
		authService:   authService,
	}
}

// NewRecipeHandlerWithRateLimit creates a recipe handler whose submit and
// decrypt routes are rate limited. Either limiter may be nil.
func NewRecipeHandlerWithRateLimit(recipeService service.IRecipeService, authService service.IAuthService, submitLimiter, decryptLimiter *middleware.RateLimiter) *RecipeHandler {
	h := NewRecipeHandler(recipeService, authService)
	h.submitLimiter = submitLimiter
	h.decryptLimiter = decryptLimiter
	return h
}

func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := middleware.AuthMiddleware(h.authService)
	available := middleware.RequireAvailable(h.recipeService)

	submit := []gin.HandlerFunc{auth, available}
	if h.submitLimiter != nil {
		submit = append(submit, h.submitLimiter.RateLimitMiddleware())
	}
	decrypt := []gin.HandlerFunc{auth}
	if h.decryptLimiter != nil {
		decrypt = append(decrypt, h.decryptLimiter.PerRecipeRateLimitMiddleware())
	}

	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.ListRecipes)
		recipes.GET("/stats", h.GetStats)
		recipes.GET("/:id", h.GetRecipe)
		recipes.POST("", append(submit, h.SubmitRecipe)...)
		recipes.POST("/:id/generate", auth, available, h.GenerateRecipe)
		recipes.POST("/:id/reject", auth, available, h.RejectRecipe)
		recipes.POST("/:id/decrypt", append(decrypt, h.DecryptRecipe)...)
	}
}

func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var query types.ListRecipesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipes, err := h.recipeService.List(c.Request.Context(), models.RecipeFilters{
		Status: models.RequestStatus(query.Status),
		Owner:  query.Owner,
		Query:  query.Query,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeListResponse{Recipes: recipes, Total: len(recipes)})
}

func (h *RecipeHandler) GetStats(c *gin.Context) {
	stats, err := h.recipeService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipeService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": recipe})
}

func (h *RecipeHandler) SubmitRecipe(c *gin.Context) {
	address, ok := middleware.WalletAddress(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wallet not authenticated"})
		return
	}

	var req types.SubmitRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":       err.Error(),
			"transaction": types.TransactionStatus{Status: types.TxError, Message: MsgSubmissionFailed + err.Error()},
		})
		return
	}

	recipe, err := h.recipeService.Submit(c.Request.Context(), address, service.DietaryInput{
		Ingredients: req.Ingredients,
		Allergies:   req.Allergies,
		Preferences: req.Preferences,
		HealthGoal:  req.HealthGoal,
	})
	if err != nil {
		respondTxError(c, MsgSubmissionFailed, err)
		return
	}

	c.JSON(http.StatusCreated, types.RecipeResponse{
		Transaction: types.TransactionStatus{Status: types.TxSuccess, Message: MsgSubmitted},
		Recipe:      recipe,
	})
}

func (h *RecipeHandler) GenerateRecipe(c *gin.Context) {
	address, _ := middleware.WalletAddress(c)
	recipe, err := h.recipeService.Generate(c.Request.Context(), address, c.Param("id"))
	if err != nil {
		respondTxError(c, MsgGenerationFailed, err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeResponse{
		Transaction: types.TransactionStatus{Status: types.TxSuccess, Message: MsgGenerated},
		Recipe:      recipe,
	})
}

func (h *RecipeHandler) RejectRecipe(c *gin.Context) {
	address, _ := middleware.WalletAddress(c)
	recipe, err := h.recipeService.Reject(c.Request.Context(), address, c.Param("id"))
	if err != nil {
		respondTxError(c, MsgRejectionFailed, err)
		return
	}
	c.JSON(http.StatusOK, types.RecipeResponse{
		Transaction: types.TransactionStatus{Status: types.TxSuccess, Message: MsgRejected},
		Recipe:      recipe,
	})
}

func (h *RecipeHandler) DecryptRecipe(c *gin.Context) {
	address, _ := middleware.WalletAddress(c)
	id := c.Param("id")
	text, err := h.recipeService.Decrypt(c.Request.Context(), address, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.DecryptResponse{ID: id, Recipe: text, Notice: MsgDecryptNotice})
}
