package config

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConfigRequirements defines what each environment insists on
type ConfigRequirements struct {
	// RequireJWTSecret rejects an empty session signing secret.
	RequireJWTSecret bool
	// AllowMemoryStore permits the in-process store, which loses data on restart.
	AllowMemoryStore bool
}

var requirements = map[Environment]ConfigRequirements{
	Development: {RequireJWTSecret: true, AllowMemoryStore: true},
	Test:        {RequireJWTSecret: true, AllowMemoryStore: true},
	CI:          {RequireJWTSecret: true, AllowMemoryStore: true},
	Production:  {RequireJWTSecret: true, AllowMemoryStore: false},
}

// ValidateConfig checks if the configuration meets the requirements for its environment
func ValidateConfig(cfg *Config) error {
	env := cfg.Environment
	if env == "" {
		env = GetEnvironment()
	}
	reqs := requirements[env]

	var errs []ValidationError
	fail := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if cfg.ServerPort == "" {
		fail("SERVER_PORT", "is required")
	}
	if reqs.RequireJWTSecret && cfg.JWTSecret == "" {
		fail("JWT_SECRET", "is required")
	}
	if cfg.ChainID <= 0 {
		fail("CHAIN_ID", "must be positive, got %d", cfg.ChainID)
	}
	if !common.IsHexAddress(cfg.ContractAddress) {
		fail("CONTRACT_ADDRESS", "%q is not a hex address", cfg.ContractAddress)
	}
	for _, a := range cfg.AdminAddresses {
		if !common.IsHexAddress(a) {
			fail("ADMIN_ADDRESSES", "%q is not a hex address", a)
		}
	}
	if cfg.TokenTTL <= 0 {
		fail("TOKEN_TTL", "must be positive")
	}
	if cfg.DecryptLatency < 0 {
		fail("DECRYPT_LATENCY", "must not be negative")
	}
	if cfg.SubmitRateLimit < 0 || cfg.DecryptRateLimit < 0 {
		fail("RATE_LIMIT", "limits must not be negative")
	}
	if cfg.SubmitRateLimit > 0 && cfg.SubmitRateWindow <= 0 {
		fail("SUBMIT_RATE_WINDOW", "must be positive when a submit limit is set")
	}

	switch cfg.StoreBackend {
	case BackendMemory:
		if !reqs.AllowMemoryStore {
			fail("STORE_BACKEND", "memory store is not allowed in %s", env)
		}
	case BackendRedis:
		if cfg.RedisURL == "" && cfg.RedisHost == "" {
			fail("REDIS_HOST", "REDIS_URL or REDIS_HOST is required for the redis store")
		}
	case BackendSQL:
		switch cfg.DBDriver {
		case "postgres":
			if cfg.DBHost == "" || cfg.DBName == "" {
				fail("DB_HOST", "DB_HOST and DB_NAME are required for the postgres store")
			}
		case "sqlite":
			if cfg.SQLitePath == "" {
				fail("SQLITE_PATH", "is required for the sqlite store")
			}
		default:
			fail("DB_DRIVER", "unknown driver %q", cfg.DBDriver)
		}
	case BackendS3:
		if cfg.S3Bucket == "" {
			fail("S3_BUCKET_NAME", "is required for the s3 store")
		}
	case BackendEthereum:
		if cfg.EthRPCURL == "" {
			fail("ETH_RPC_URL", "is required for the ethereum store")
		}
	default:
		fail("STORE_BACKEND", "unknown backend %q", cfg.StoreBackend)
	}

	if len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return fmt.Errorf("configuration validation failed:\n%s", strings.Join(msgs, "\n"))
	}
	return nil
}
