package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Store backends selectable with STORE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendSQL      = "sql"
	BackendS3       = "s3"
	BackendEthereum = "ethereum"
)

// DefaultContractAddress is the first contract a fresh local devnet deploys.
const DefaultContractAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// Config holds all configuration for the application
type Config struct {
	Environment Environment `yaml:"-"`

	// Server configuration
	ServerPort     string   `yaml:"server_port"`
	ServerHost     string   `yaml:"server_host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	LogLevel       string   `yaml:"log_level"`
	AdminAddresses []string `yaml:"admin_addresses"`

	// Contract store configuration
	StoreBackend    string `yaml:"store_backend"`
	ContractAddress string `yaml:"contract_address"`
	ChainID         int64  `yaml:"chain_id"`
	EthRPCURL       string `yaml:"eth_rpc_url"`
	EthPrivateKey   string `yaml:"-"`

	// Database configuration
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"-"`
	DBName     string `yaml:"db_name"`
	DBSSLMode  string `yaml:"db_ssl_mode"`
	SQLitePath string `yaml:"sqlite_path"`

	// Redis configuration
	RedisHost      string `yaml:"redis_host"`
	RedisPort      string `yaml:"redis_port"`
	RedisPassword  string `yaml:"-"`
	RedisDB        int    `yaml:"redis_db"`
	RedisURL       string `yaml:"redis_url"`
	RedisNamespace string `yaml:"redis_namespace"`

	// S3 configuration
	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	S3Endpoint string `yaml:"s3_endpoint"`
	AWSRegion  string `yaml:"aws_region"`

	// JWT configuration
	JWTSecret string        `yaml:"-"`
	TokenTTL  time.Duration `yaml:"token_ttl"`

	// Recipe service tuning
	DecryptLatency   time.Duration `yaml:"decrypt_latency"`
	SubmitRateLimit  int           `yaml:"submit_rate_limit"`
	SubmitRateWindow time.Duration `yaml:"submit_rate_window"`
	DecryptRateLimit int           `yaml:"decrypt_rate_limit"`
}

// Defaults returns the configuration used when nothing overrides a field.
func Defaults() *Config {
	return &Config{
		ServerPort:       "8080",
		ServerHost:       "0.0.0.0",
		LogLevel:         "info",
		StoreBackend:     BackendMemory,
		ContractAddress:  DefaultContractAddress,
		ChainID:          31337,
		DBDriver:         "postgres",
		DBPort:           "5432",
		DBSSLMode:        "disable",
		SQLitePath:       "chef.db",
		RedisPort:        "6379",
		RedisNamespace:   "chef",
		S3Prefix:         "contract/",
		TokenTTL:         24 * time.Hour,
		DecryptLatency:   1500 * time.Millisecond,
		SubmitRateLimit:  10,
		SubmitRateWindow: time.Hour,
		DecryptRateLimit: 30,
	}
}

// LoadConfig creates a new Config instance from defaults, an optional YAML
// file (CONFIG_FILE), environment variables and secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := Defaults()
	cfg.Environment = env

	// Load configuration based on environment
	switch env {
	case CI:
		if err := loadCIConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load CI configuration: %w", err)
		}
	case Development, Test:
		if err := loadDevConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load development configuration: %w", err)
		}
	case Production:
		if err := loadProdConfig(cfg); err != nil {
			return nil, fmt.Errorf("failed to load production configuration: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	// Validate the configuration
	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI using environment variables only
func loadCIConfig(cfg *Config) error {
	if err := loadFile(cfg); err != nil {
		return err
	}
	if err := applyEnv(cfg); err != nil {
		return err
	}

	cfg.DBPassword = os.Getenv("TEST_DB_PASSWORD")
	if cfg.DBPassword == "" {
		cfg.DBPassword = os.Getenv("DB_PASSWORD")
	}
	cfg.JWTSecret = firstNonEmpty(os.Getenv("TEST_JWT_SECRET"), os.Getenv("JWT_SECRET"))
	cfg.RedisPassword = firstNonEmpty(os.Getenv("TEST_REDIS_PASSWORD"), os.Getenv("REDIS_PASSWORD"))
	cfg.EthPrivateKey = os.Getenv("ETH_PRIVATE_KEY")
	return nil
}

// loadDevConfig loads .env, then the YAML file, then env vars, then secrets
func loadDevConfig(cfg *Config) error {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if err := loadFile(cfg); err != nil {
		return err
	}
	if err := applyEnv(cfg); err != nil {
		return err
	}
	loadSecrets(cfg)
	return nil
}

// loadProdConfig loads configuration for production. Secrets come from the
// secrets directory and fall back to environment variables
func loadProdConfig(cfg *Config) error {
	if err := loadFile(cfg); err != nil {
		return err
	}
	if err := applyEnv(cfg); err != nil {
		return err
	}
	loadSecrets(cfg)
	return nil
}

func loadSecrets(cfg *Config) {
	cfg.DBPassword = secretOrEnv("db_password", "DB_PASSWORD")
	cfg.JWTSecret = secretOrEnv("jwt_secret", "JWT_SECRET")
	cfg.RedisPassword = secretOrEnv("redis_password", "REDIS_PASSWORD")
	cfg.EthPrivateKey = secretOrEnv("eth_private_key", "ETH_PRIVATE_KEY")
	if user := readSecret("db_user"); user != "" {
		cfg.DBUser = user
	}
}

// loadFile overlays the YAML file named by CONFIG_FILE, if any.
func loadFile(cfg *Config) error {
	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// applyEnv overrides fields from environment variables that are set.
func applyEnv(cfg *Config) error {
	setString(&cfg.ServerPort, "SERVER_PORT")
	setString(&cfg.ServerHost, "SERVER_HOST")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("ADMIN_ADDRESSES"); v != "" {
		cfg.AdminAddresses = splitList(v)
	}

	setString(&cfg.StoreBackend, "STORE_BACKEND")
	setString(&cfg.ContractAddress, "CONTRACT_ADDRESS")
	setString(&cfg.EthRPCURL, "ETH_RPC_URL")

	setString(&cfg.DBDriver, "DB_DRIVER")
	setString(&cfg.DBHost, "DB_HOST")
	setString(&cfg.DBPort, "DB_PORT")
	setString(&cfg.DBUser, "DB_USER")
	setString(&cfg.DBName, "DB_NAME")
	setString(&cfg.DBSSLMode, "DB_SSL_MODE")
	setString(&cfg.SQLitePath, "SQLITE_PATH")

	setString(&cfg.RedisHost, "REDIS_HOST")
	setString(&cfg.RedisPort, "REDIS_PORT")
	setString(&cfg.RedisURL, "REDIS_URL")
	setString(&cfg.RedisNamespace, "REDIS_NAMESPACE")

	setString(&cfg.S3Bucket, "S3_BUCKET_NAME")
	setString(&cfg.S3Prefix, "S3_PREFIX")
	setString(&cfg.S3Endpoint, "S3_ENDPOINT")
	setString(&cfg.AWSRegion, "AWS_REGION")

	ints := []struct {
		dst *int
		key string
	}{
		{&cfg.RedisDB, "REDIS_DB"},
		{&cfg.SubmitRateLimit, "SUBMIT_RATE_LIMIT"},
		{&cfg.DecryptRateLimit, "DECRYPT_RATE_LIMIT"},
	}
	for _, i := range ints {
		if v := os.Getenv(i.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s must be an integer: %w", i.key, err)
			}
			*i.dst = n
		}
	}
	if v := os.Getenv("CHAIN_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("CHAIN_ID must be an integer: %w", err)
		}
		cfg.ChainID = n
	}

	durations := []struct {
		dst *time.Duration
		key string
	}{
		{&cfg.TokenTTL, "TOKEN_TTL"},
		{&cfg.DecryptLatency, "DECRYPT_LATENCY"},
		{&cfg.SubmitRateWindow, "SUBMIT_RATE_WINDOW"},
	}
	for _, d := range durations {
		if v := os.Getenv(d.key); v != "" {
			parsed, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%s must be a duration: %w", d.key, err)
			}
			*d.dst = parsed
		}
	}
	return nil
}

// RedisAddr returns host:port for the Redis server.
func (c *Config) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func secretOrEnv(secret, envVar string) string {
	if v := readSecret(secret); v != "" {
		return v
	}
	return os.Getenv(envVar)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	secretPath := filepath.Join(secretsDir, name)
	if data, err := os.ReadFile(secretPath); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
