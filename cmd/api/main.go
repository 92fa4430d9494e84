package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/config"
	"github.com/pageza/chef-fhe/backend/internal/api"
	"github.com/pageza/chef-fhe/backend/internal/contract"
	"github.com/pageza/chef-fhe/backend/internal/database"
	"github.com/pageza/chef-fhe/backend/internal/logging"
	"github.com/pageza/chef-fhe/backend/internal/middleware"
	"github.com/pageza/chef-fhe/backend/internal/router"
	"github.com/pageza/chef-fhe/backend/internal/server"
	"github.com/pageza/chef-fhe/backend/internal/service"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Environment.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("server exited with error", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting private chef api",
		zap.Stringer("environment", cfg.Environment),
		zap.String("store", cfg.StoreBackend),
		zap.String("contract", cfg.ContractAddress),
		zap.Int64("chain_id", cfg.ChainID))

	store, err := database.NewStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := contract.Close(store); err != nil {
			logger.Warn("failed to close contract store", zap.Error(err))
		}
	}()

	recipeService := service.NewRecipeService(store, logger, service.RecipeServiceOptions{
		DecryptDelay: cfg.DecryptLatency,
	})
	authService := service.NewAuthService(cfg.JWTSecret, cfg.ContractAddress, cfg.ChainID, cfg.TokenTTL, logger)

	var counter middleware.WindowCounter = middleware.NewLocalCounter()
	if client := sharedRedis(ctx, cfg, logger); client != nil {
		defer client.Close()
		counter = middleware.NewRedisCounter(client)
		authService.SetKeyRegistry(service.NewRedisKeyRegistry(client, cfg.RedisNamespace))
	} else {
		logger.Info("no redis configured, rate limits and issued session keys are per process")
	}

	deps := api.Deps{
		RecipeService:  recipeService,
		AuthService:    authService,
		AdminAddresses: cfg.AdminAddresses,
	}
	if cfg.SubmitRateLimit > 0 {
		deps.SubmitLimiter = middleware.NewSubmissionRateLimiter(counter, cfg.SubmitRateLimit, cfg.SubmitRateWindow, logger)
	}
	if cfg.DecryptRateLimit > 0 {
		deps.DecryptLimiter = middleware.NewDecryptRateLimiter(counter, cfg.DecryptRateLimit, cfg.SubmitRateWindow, logger)
	}
	if len(cfg.AdminAddresses) == 0 {
		logger.Warn("ADMIN_ADDRESSES is empty, admin routes are closed")
	}

	handler := router.SetupRouter(cfg.AllowedOrigins, deps, logger)

	return server.New(handler, cfg.Addr(), logger).Run(ctx)
}

// sharedRedis connects to Redis when one is configured. Rate limit counters
// and issued session keys live there so every instance sees the same state.
func sharedRedis(ctx context.Context, cfg *config.Config, logger *zap.Logger) *redis.Client {
	if cfg.RedisURL == "" && cfg.RedisHost == "" {
		return nil
	}
	client, err := database.NewRedisClient(ctx, cfg, logger)
	if err != nil {
		logger.Warn("redis unavailable, falling back to per-process state", zap.Error(err))
		return nil
	}
	return client
}
