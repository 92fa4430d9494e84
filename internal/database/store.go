package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/config"
	"github.com/pageza/chef-fhe/backend/internal/contract"
)

// NewStore builds the contract store selected by cfg.StoreBackend.
// The caller releases it with contract.Close.
func NewStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (contract.Store, error) {
	logger = logger.With(zap.String("backend", cfg.StoreBackend))

	switch cfg.StoreBackend {
	case config.BackendMemory:
		logger.Warn("using in-memory contract store, data is lost on restart")
		return contract.NewMemoryStore(cfg.ContractAddress), nil

	case config.BackendRedis:
		client, err := NewRedisClient(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		return contract.NewRedisStore(client, cfg.ContractAddress, cfg.RedisNamespace, logger), nil

	case config.BackendSQL:
		db, err := New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		if cfg.DBDriver == "sqlite" {
			if err := RunMigrations(db, logger); err != nil {
				return nil, err
			}
		}
		return contract.NewSQLStore(db, cfg.ContractAddress, logger), nil

	case config.BackendS3:
		s3cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
		}
		return contract.NewS3Store(s3cfg.Client, s3cfg.BucketName, s3cfg.Prefix, cfg.ContractAddress, logger), nil

	case config.BackendEthereum:
		if cfg.EthPrivateKey == "" {
			logger.Warn("no signing key configured, ethereum store is read-only")
		}
		return contract.DialEthereumStore(ctx, cfg.EthRPCURL, cfg.ContractAddress, cfg.EthPrivateKey, cfg.ChainID, logger)
	}
	return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
