package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate points every file-based source at an empty temp dir.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CI", "")
	t.Setenv("ENV", "test")
	t.Setenv("SECRETS_DIR", dir)
	t.Setenv("ENV_FILE", filepath.Join(dir, "missing.env"))
	t.Setenv("CONFIG_FILE", "")
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, Test, cfg.Environment)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, BackendMemory, cfg.StoreBackend)
	assert.Equal(t, DefaultContractAddress, cfg.ContractAddress)
	assert.Equal(t, int64(31337), cfg.ChainID)
	assert.Equal(t, 1500*time.Millisecond, cfg.DecryptLatency)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("STORE_BACKEND", "sql")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_NAME", "chef")
	t.Setenv("CHAIN_ID", "11155111")
	t.Setenv("DECRYPT_LATENCY", "250ms")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("SUBMIT_RATE_LIMIT", "3")
	t.Setenv("ADMIN_ADDRESSES", "0x70997970C51812dc3A010C7d01b50e0d17dc79C8")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, BackendSQL, cfg.StoreBackend)
	assert.Equal(t, "db", cfg.DBHost)
	assert.Equal(t, int64(11155111), cfg.ChainID)
	assert.Equal(t, 250*time.Millisecond, cfg.DecryptLatency)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 3, cfg.SubmitRateLimit)
	assert.Equal(t, []string{"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"}, cfg.AdminAddresses)
}

func TestSecretsWinOverEnvironment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("JWT_SECRET", "env-secret")
	writeFile(t, dir, "jwt_secret", "file-secret\n")
	writeFile(t, dir, "eth_private_key", "abcd")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.JWTSecret)
	assert.Equal(t, "abcd", cfg.EthPrivateKey)
}

func TestYAMLOverlayThenEnv(t *testing.T) {
	dir := isolate(t)
	t.Setenv("JWT_SECRET", "s")
	path := writeFile(t, dir, "chef.yaml", `
server_port: "9090"
store_backend: redis
redis_host: cache
decrypt_latency: 2s
chain_id: 5
allowed_origins:
  - https://chef.example
`)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("CHAIN_ID", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.ServerPort)
	assert.Equal(t, BackendRedis, cfg.StoreBackend)
	assert.Equal(t, "cache:6379", cfg.RedisAddr())
	assert.Equal(t, 2*time.Second, cfg.DecryptLatency)
	assert.Equal(t, int64(7), cfg.ChainID)
	assert.Equal(t, []string{"https://chef.example"}, cfg.AllowedOrigins)
}

func TestDotEnvIsLoadedInDevelopment(t *testing.T) {
	dir := isolate(t)
	t.Setenv("ENV", "development")
	envFile := writeFile(t, dir, ".env", "JWT_SECRET=from-dotenv\nLOG_LEVEL=debug\n")
	t.Setenv("ENV_FILE", envFile)
	t.Setenv("JWT_SECRET", "")
	os.Unsetenv("JWT_SECRET")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.JWTSecret)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	isolate(t)
	t.Setenv("JWT_SECRET", "s")

	t.Setenv("CHAIN_ID", "mainnet")
	_, err := LoadConfig()
	assert.ErrorContains(t, err, "CHAIN_ID")

	t.Setenv("CHAIN_ID", "1")
	t.Setenv("DECRYPT_LATENCY", "soon")
	_, err = LoadConfig()
	assert.ErrorContains(t, err, "DECRYPT_LATENCY")
}

func TestValidateConfig(t *testing.T) {
	valid := func() *Config {
		cfg := Defaults()
		cfg.Environment = Test
		cfg.JWTSecret = "s"
		return cfg
	}
	require.NoError(t, ValidateConfig(valid()))

	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{"missing secret", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"bad contract", func(c *Config) { c.ContractAddress = "0x12" }, "CONTRACT_ADDRESS"},
		{"bad admin", func(c *Config) { c.AdminAddresses = []string{"root"} }, "ADMIN_ADDRESSES"},
		{"zero chain", func(c *Config) { c.ChainID = 0 }, "CHAIN_ID"},
		{"unknown backend", func(c *Config) { c.StoreBackend = "ipfs" }, "STORE_BACKEND"},
		{"ethereum without rpc", func(c *Config) { c.StoreBackend = BackendEthereum }, "ETH_RPC_URL"},
		{"s3 without bucket", func(c *Config) { c.StoreBackend = BackendS3 }, "S3_BUCKET_NAME"},
		{"sql unknown driver", func(c *Config) { c.StoreBackend = BackendSQL; c.DBDriver = "mysql" }, "DB_DRIVER"},
		{"memory in production", func(c *Config) { c.Environment = Production }, "STORE_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			assert.ErrorContains(t, ValidateConfig(cfg), tt.field)
		})
	}
}

func TestGetEnvironment(t *testing.T) {
	t.Setenv("CI", "true")
	assert.Equal(t, CI, GetEnvironment())

	t.Setenv("CI", "")
	t.Setenv("ENV", "production")
	assert.True(t, IsProduction())
	t.Setenv("ENV", "")
	assert.True(t, IsDevelopment())
}

func TestEnvironmentAliases(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("ENV", "PROD")
	assert.Equal(t, Production, GetEnvironment())
	assert.Equal(t, "production", GetEnvironment().String())
	t.Setenv("ENV", "staging")
	assert.Equal(t, Development, GetEnvironment())
}
