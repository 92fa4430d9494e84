package service

import (
	"context"

	"github.com/pageza/chef-fhe/backend/internal/models"
	"github.com/pageza/chef-fhe/backend/internal/types"
)

// IRecipeService defines the interface for recipe request operations
type IRecipeService interface {
	ContractAddress() string
	Available(ctx context.Context) bool
	List(ctx context.Context, filters models.RecipeFilters) ([]*models.RecipeRequest, error)
	Get(ctx context.Context, id string) (*models.RecipeRequest, error)
	Submit(ctx context.Context, owner string, input DietaryInput) (*models.RecipeRequest, error)
	Generate(ctx context.Context, caller, id string) (*models.RecipeRequest, error)
	Reject(ctx context.Context, caller, id string) (*models.RecipeRequest, error)
	Decrypt(ctx context.Context, caller, id string) (string, error)
	Stats(ctx context.Context) (models.RecipeStats, error)
	CheckIntegrity(ctx context.Context) (*types.IntegrityReport, error)
}

// IAuthService defines the interface for wallet session operations
type IAuthService interface {
	SignatureParams(ctx context.Context) (*types.SignatureParamsResponse, error)
	CreateSession(ctx context.Context, req *types.CreateSessionRequest) (*types.SessionResponse, error)
	GenerateToken(claims *types.TokenClaims) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
