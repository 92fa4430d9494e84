package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/chef-fhe/backend/internal/models"
)

// SQLStore keeps contract data in the contract_entries table.
type SQLStore struct {
	db      *gorm.DB
	address string
	logger  *zap.Logger
}

// NewSQLStore wraps a gorm connection. The table must already exist (see database.RunMigrations).
func NewSQLStore(db *gorm.DB, address string, logger *zap.Logger) *SQLStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SQLStore{db: db, address: address, logger: logger}
}

func (s *SQLStore) IsAvailable(ctx context.Context) (bool, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return false, nil
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		s.logger.Warn("sql contract store ping failed", zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *SQLStore) Address() string {
	return s.address
}

func (s *SQLStore) GetData(ctx context.Context, key string) ([]byte, error) {
	var entry models.ContractEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return []byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.Value, nil
}

func (s *SQLStore) SetData(ctx context.Context, key string, value []byte) error {
	entry := models.ContractEntry{Key: key, Value: value}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	like := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(prefix) + "%"
	err := s.db.WithContext(ctx).
		Model(&models.ContractEntry{}).
		Where(`key LIKE ? ESCAPE '\'`, like).
		Order("key").
		Pluck("key", &keys).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	return keys, nil
}

func (s *SQLStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
