package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"math/rand"
	"os"

	"go.uber.org/zap"

	"github.com/pageza/chef-fhe/backend/config"
	"github.com/pageza/chef-fhe/backend/internal/contract"
	"github.com/pageza/chef-fhe/backend/internal/database"
	"github.com/pageza/chef-fhe/backend/internal/logging"
	"github.com/pageza/chef-fhe/backend/internal/service"
)

// Hardhat's first default account.
const defaultOwner = "0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266"

type options struct {
	owner    string
	count    int
	generate bool
}

func main() {
	var opts options
	flag.StringVar(&opts.owner, "owner", defaultOwner, "Wallet address that owns the seeded requests")
	flag.IntVar(&opts.count, "count", 5, "Number of requests to submit")
	flag.BoolVar(&opts.generate, "generate", false, "Generate a recipe for every other request")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger, err := logging.New(cfg.Environment.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	err = run(context.Background(), cfg, opts, logger)
	if err != nil {
		logger.Error("seeding failed", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, opts options, logger *zap.Logger) error {
	if cfg.StoreBackend == config.BackendMemory {
		logger.Warn("seeding the memory store has no lasting effect")
	}

	store, err := database.NewStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := contract.Close(store); err != nil {
			logger.Warn("failed to close contract store", zap.Error(err))
		}
	}()

	recipes := service.NewRecipeService(store, logger, service.RecipeServiceOptions{})

	seeded := 0
	for i := 0; i < opts.count; i++ {
		input := service.DietaryInput{
			Ingredients: rand.Intn(8),
			Allergies:   rand.Intn(8),
			Preferences: rand.Intn(8),
			HealthGoal:  rand.Intn(8),
		}
		req, err := recipes.Submit(ctx, opts.owner, input)
		if err != nil {
			if errors.Is(err, service.ErrInvalidInput) {
				return err
			}
			logger.Error("failed to submit request", zap.Int("index", i), zap.Error(err))
			continue
		}
		seeded++

		if opts.generate && i%2 == 0 {
			if _, err := recipes.Generate(ctx, opts.owner, req.ID); err != nil {
				logger.Error("failed to generate recipe", zap.String("id", req.ID), zap.Error(err))
				continue
			}
		}
		logger.Info("seeded request", zap.String("id", req.ID), zap.Int("ingredients", input.Ingredients))
	}

	logger.Info("seeding complete", zap.Int("seeded", seeded), zap.Int("requested", opts.count))
	if seeded == 0 && opts.count > 0 {
		return errors.New("no requests were seeded")
	}
	return nil
}
