package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaultRequiresSecret(t *testing.T) {
	cfg := Default()
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")

	cfg.Auth.JWTSecret = "s"
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(mapLookup(map[string]string{
		"SHOP_HTTP_ADDR":      ":9090",
		"SHOP_DB_DRIVER":      "memory",
		"SHOP_REDIS_ENABLED":  "true",
		"SHOP_REDIS_DB":       "3",
		"SHOP_JWT_SECRET":     "env-secret",
		"SHOP_JWT_EXPIRES_IN": "45m",
		"SHOP_BCRYPT_COST":    "12",
		"SHOP_SEED":           "1",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.HTTPAddr)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 45*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, 12, cfg.Auth.BcryptCost)
	assert.True(t, cfg.Seed)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_BadValues(t *testing.T) {
	cfg := Default()
	err := cfg.applyEnv(mapLookup(map[string]string{
		"SHOP_BCRYPT_COST":    "lots",
		"SHOP_REDIS_ENABLED":  "perhaps",
		"SHOP_JWT_EXPIRES_IN": "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHOP_BCRYPT_COST")
	assert.Contains(t, err.Error(), "SHOP_REDIS_ENABLED")
	assert.Contains(t, err.Error(), "SHOP_JWT_EXPIRES_IN")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad driver", func(c *Config) { c.Database.Driver = "sqlite" }, "not supported"},
		{"mysql without dsn", func(c *Config) { c.Database.DSN = "" }, "dsn"},
		{"zero ttl", func(c *Config) { c.Auth.TokenTTL = 0 }, "token_ttl"},
		{"low cost", func(c *Config) { c.Auth.BcryptCost = 2 }, "bcrypt_cost"},
		{"no http addr", func(c *Config) { c.Server.HTTPAddr = "" }, "http_addr"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Auth.JWTSecret = "s"
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shop.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  http_addr: ":7070"
database:
  driver: memory
auth:
  jwt_secret: file-secret
  token_ttl: 10m
seed: true
`), 0o600))

	t.Setenv("SHOP_HTTP_ADDR", ":7171")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7171", cfg.Server.HTTPAddr)
	assert.Equal(t, ":50051", cfg.Server.GRPCAddr)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, "file-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, 10*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Seed)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}
