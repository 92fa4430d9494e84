package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/chef-fhe/backend/internal/models"
)

// RunMigrations creates or updates the contract_entries table.
func RunMigrations(db *gorm.DB, logger *zap.Logger) error {
	logger.Info("running migrations", zap.String("dialect", db.Dialector.Name()))
	if err := db.AutoMigrate(&models.ContractEntry{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", models.ContractEntry{}.TableName(), err)
	}
	logger.Info("migrations applied")
	return nil
}
