package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/chef-fhe/backend/internal/service"
	"github.com/pageza/chef-fhe/backend/internal/types"
)

// AuthHandler exchanges a signed decryption message for a wallet session token.
type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	w := router.Group("/wallet")
	{
		w.GET("/params", h.GetSignatureParams)
		w.POST("/session", h.CreateSession)
	}
}

// GetSignatureParams returns the message the wallet must sign.
func (h *AuthHandler) GetSignatureParams(c *gin.Context) {
	params, err := h.authService.SignatureParams(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, params)
}

// CreateSession verifies the signature and issues a token.
func (h *AuthHandler) CreateSession(c *gin.Context) {
	var req types.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.authService.CreateSession(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}
