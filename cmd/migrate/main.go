package main

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/config"
	"github.com/pageza/chef-fhe/backend/internal/database"
	"github.com/pageza/chef-fhe/backend/internal/logging"
	"github.com/pageza/chef-fhe/backend/internal/models"
)

func main() {
	// Parse command line flags
	rollback := flag.Bool("rollback", false, "Drop the contract_entries table")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.Environment.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	err = run(context.Background(), cfg, *rollback, logger)
	if err != nil {
		logger.Error("migration failed", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, rollback bool, logger *zap.Logger) error {
	if cfg.StoreBackend != config.BackendSQL {
		logger.Info("store backend needs no migrations", zap.String("backend", cfg.StoreBackend))
		return nil
	}

	db, err := database.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if rollback {
		if err := db.Migrator().DropTable(&models.ContractEntry{}); err != nil {
			return err
		}
		logger.Info("dropped table", zap.String("table", models.ContractEntry{}.TableName()))
		return nil
	}
	return database.RunMigrations(db, logger)
}
