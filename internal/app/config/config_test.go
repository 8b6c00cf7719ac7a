package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_EnvOnly(t *testing.T) {
	t.Setenv("PORT", "8081")
	t.Setenv("MONGO_URI", "mongodb://mongo:27017")
	t.Setenv("CART_SESSION_IDLE_TTL", "45m")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.HTTPServer.Port)
	assert.Equal(t, "mongodb://mongo:27017", cfg.MongoDB.URI)
	assert.Equal(t, 45*time.Minute, cfg.Cart.SessionIdleTTL)
	assert.Equal(t, "storefront", cfg.MongoDB.Database)
	assert.Equal(t, 5*time.Minute, cfg.ProductCache.TTL)
	assert.Equal(t, 8, cfg.Cart.QuoteWorkers)
	assert.False(t, cfg.SMTP.Enabled())
	assert.False(t, cfg.Storage.Enabled())
}

func TestLoadConfig_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
smtp:
  host: smtp.example.com
  sender_email: shop@example.com
storage:
  endpoint: minio:9000
  access_key: key
  secret_key: secret
redis:
  password: hunter2
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, "minio:9000", cfg.Storage.Endpoint)
	assert.True(t, cfg.Storage.Enabled())
	assert.Equal(t, "hunter2", cfg.Redis.Password)
	assert.Equal(t, "5000", cfg.HTTPServer.Port)
}

func TestLoadConfig_MissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6380")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "redis:6380", cfg.Redis.Addr)
}
