package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/config"
)

func TestRunMigratesAndRollsBack(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreBackend = config.BackendSQL
	cfg.DBDriver = "sqlite"
	cfg.SQLitePath = filepath.Join(t.TempDir(), "migrate.db")
	ctx := context.Background()

	require.NoError(t, run(ctx, cfg, false, zap.NewNop()))
	require.NoError(t, run(ctx, cfg, true, zap.NewNop()))
}

func TestRunReportsConnectionErrors(t *testing.T) {
	cfg := config.Defaults()
	cfg.StoreBackend = config.BackendSQL
	cfg.DBDriver = "oracle"
	assert.Error(t, run(context.Background(), cfg, false, zap.NewNop()))
}

func TestRunSkipsNonSQLBackends(t *testing.T) {
	assert.NoError(t, run(context.Background(), config.Defaults(), false, zap.NewNop()))
}
