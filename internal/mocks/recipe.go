package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/chef-fhe/backend/internal/models"
	"github.com/pageza/chef-fhe/backend/internal/service"
	"github.com/pageza/chef-fhe/backend/internal/types"
)

// MockRecipeService is a mock implementation of the RecipeService interface
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) ContractAddress() string {
	return m.Called().String(0)
}

func (m *MockRecipeService) Available(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}

func (m *MockRecipeService) List(ctx context.Context, filters models.RecipeFilters) ([]*models.RecipeRequest, error) {
	args := m.Called(ctx, filters)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.RecipeRequest), args.Error(1)
}

func (m *MockRecipeService) Get(ctx context.Context, id string) (*models.RecipeRequest, error) {
	args := m.Called(ctx, id)
	return recipeOrNil(args.Get(0)), args.Error(1)
}

func (m *MockRecipeService) Submit(ctx context.Context, owner string, input service.DietaryInput) (*models.RecipeRequest, error) {
	args := m.Called(ctx, owner, input)
	return recipeOrNil(args.Get(0)), args.Error(1)
}

func (m *MockRecipeService) Generate(ctx context.Context, caller, id string) (*models.RecipeRequest, error) {
	args := m.Called(ctx, caller, id)
	return recipeOrNil(args.Get(0)), args.Error(1)
}

func (m *MockRecipeService) Reject(ctx context.Context, caller, id string) (*models.RecipeRequest, error) {
	args := m.Called(ctx, caller, id)
	return recipeOrNil(args.Get(0)), args.Error(1)
}

func (m *MockRecipeService) Decrypt(ctx context.Context, caller, id string) (string, error) {
	args := m.Called(ctx, caller, id)
	return args.String(0), args.Error(1)
}

func (m *MockRecipeService) Stats(ctx context.Context) (models.RecipeStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(models.RecipeStats), args.Error(1)
}

func (m *MockRecipeService) CheckIntegrity(ctx context.Context) (*types.IntegrityReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.IntegrityReport), args.Error(1)
}

func recipeOrNil(v any) *models.RecipeRequest {
	if v == nil {
		return nil
	}
	return v.(*models.RecipeRequest)
}
