package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "STORE", "REDIS_HOST", "REDIS_PORT", "SESSION_TTL", "APP_ENV"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}


	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "5175", cfg.Port)
	assert.Equal(t, StoreMemory, cfg.Store)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("STORE", "redis")
	t.Setenv("REDIS_HOST", "cache")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("APP_ENV", "production")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StoreRedis, cfg.Store)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.True(t, cfg.IsProduction())
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "helper.yml")
	require.NoError(t, os.WriteFile(path, []byte("store: sqlite\nsqlite-path: /tmp/x.db\nlog-level: debug\n"), 0o600))

	t.Run("file values apply", func(t *testing.T) {
		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, StoreSQLite, cfg.Store)
		assert.Equal(t, "/tmp/x.db", cfg.SQLitePath)
		assert.Equal(t, "debug", cfg.LogLevel)
	})

	t.Run("env overrides the file", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "warn")

		cfg, err := Load(path)

		require.NoError(t, err)
		assert.Equal(t, "warn", cfg.LogLevel)
	})
}

func TestLoad_UnknownStore(t *testing.T) {
	t.Setenv("STORE", "postgres")

	_, err := Load("")

	assert.ErrorContains(t, err, "unknown store")
}
