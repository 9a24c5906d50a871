package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Server.Mode)
	assert.Equal(t, "cookie", cfg.Session.Store)
	assert.Equal(t, 86400*7, cfg.Session.MaxAge)
	assert.True(t, cfg.Store.Seed)
	assert.Equal(t, bcrypt.DefaultCost, cfg.Auth.BcryptCost)
	assert.False(t, cfg.Workflow.StrictLifecycle)
	assert.Equal(t, 10*time.Minute, cfg.Scheduler.ReminderInterval)
	assert.Equal(t, 72*time.Hour, cfg.Scheduler.ReminderWindow)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr())
	assert.False(t, cfg.IsProduction())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")
	t.Setenv("GIN_MODE", "release")
	t.Setenv("WORKFLOW_STRICT_LIFECYCLE", "true")
	t.Setenv("SCHEDULER_REMINDER_WINDOW", "24h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
	assert.True(t, cfg.IsProduction())
	assert.True(t, cfg.Workflow.StrictLifecycle)
	assert.Equal(t, 24*time.Hour, cfg.Scheduler.ReminderWindow)
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "9090"
session:
  store: redis
redis:
  host: cache
  port: "6380"
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "redis", cfg.Session.Store)
	assert.Equal(t, "cache:6380", cfg.RedisAddr())
	assert.Equal(t, "debug", cfg.Log.Level)
	// untouched keys keep their defaults
	assert.Equal(t, "stdout", cfg.Log.Output)
}

func TestLoadFromMissingFile(t *testing.T) {
	_, err := LoadFrom(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unsupported session store",
			env:  map[string]string{"SESSION_STORE": "memcached"},
		},
		{
			name: "bcrypt cost out of range",
			env:  map[string]string{"AUTH_BCRYPT_COST": "99"},
		},
		{
			name: "non-positive reminder interval",
			env:  map[string]string{"SCHEDULER_REMINDER_INTERVAL": "0s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestPoolSizeFloor(t *testing.T) {
	t.Setenv("SCHEDULER_POOL_SIZE", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Scheduler.PoolSize)
}
