package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const minimalConfig = `
server:
  host: "127.0.0.1"
  port: 8080
backend:
  base_url: "http://localhost:8000"
`

func TestLoad(t *testing.T) {
	t.Run("Minimal Config Gets Defaults", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalConfig))
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:8080", cfg.GetServerAddress())
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout())
		assert.Equal(t, 5*time.Second, cfg.MessageInterval())
		assert.Equal(t, 10*time.Minute, cfg.ThreadIdleLimit())
		assert.NotEmpty(t, cfg.Session.CredentialsFile)
		assert.Equal(t, "0 0 * * * *", cfg.Jobs.RevalidateIdentity)
		assert.Equal(t, "info", cfg.Log.Level)
	})

	t.Run("Explicit Values Win", func(t *testing.T) {
		cfg, err := Load(writeConfig(t, minimalConfig+`
polling:
  message_interval_seconds: 2
  thread_idle_minutes: 30
log:
  level: "debug"
  format: "json"
`))
		require.NoError(t, err)
		assert.Equal(t, 2*time.Second, cfg.MessageInterval())
		assert.Equal(t, 30*time.Minute, cfg.ThreadIdleLimit())
		assert.Equal(t, "debug", cfg.Log.Level)
	})

	t.Run("Missing Backend URL Is Rejected", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
server:
  host: "127.0.0.1"
  port: 8080
`))
		assert.Error(t, err)
	})

	t.Run("Bad Port Is Rejected", func(t *testing.T) {
		_, err := Load(writeConfig(t, `
server:
  port: 99999
backend:
  base_url: "http://localhost:8000"
`))
		assert.Error(t, err)
	})

	t.Run("Missing File", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MATTTER_API_BASE_URL", "http://staging.example.com")
	t.Setenv("MATTTER_API_TIMEOUT_SECONDS", "3")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(writeConfig(t, minimalConfig))
	require.NoError(t, err)
	assert.Equal(t, "http://staging.example.com", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.RequestTimeout())
	assert.Equal(t, "127.0.0.1:9090", cfg.GetServerAddress())
	assert.Equal(t, "warn", cfg.Log.Level)
}
