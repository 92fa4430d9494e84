package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/config"
	"github.com/pageza/chef-fhe/backend/internal/contract"
	"github.com/pageza/chef-fhe/backend/internal/database"
	"github.com/pageza/chef-fhe/backend/internal/models"
	"github.com/pageza/chef-fhe/backend/internal/service"
)

func sqliteConfig(t *testing.T) *config.Config {
	cfg := config.Defaults()
	cfg.StoreBackend = config.BackendSQL
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "seed.db")
	return cfg
}

func TestRunSeedsRequests(t *testing.T) {
	cfg := sqliteConfig(t)
	ctx := context.Background()

	require.NoError(t, run(ctx, cfg, options{owner: defaultOwner, count: 3, generate: true}, zap.NewNop()))

	// the store was closed by run, so reopen it to check what landed
	store, err := database.NewStore(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	defer contract.Close(store)
	list, err := service.NewRecipeService(store, zap.NewNop(), service.RecipeServiceOptions{}).List(ctx, models.RecipeFilters{})
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestRunReturnsErrorsInsteadOfExiting(t *testing.T) {
	err := run(context.Background(), sqliteConfig(t), options{owner: "not-a-wallet", count: 2}, zap.NewNop())
	assert.Error(t, err)
}
