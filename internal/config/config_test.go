package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "data", cfg.Storage.Dir)
	assert.Equal(t, 587, cfg.Email.SMTP.Port)
	assert.Equal(t, "0 9 * * MON", cfg.Digest.Schedule)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"server": {"port": 9090},
		"storage": {"dir": "/var/lib/portal"},
		"email": {"provider": "smtp", "team_email": "team@example.com"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "/var/lib/portal", cfg.Storage.Dir)
	assert.Equal(t, "smtp", cfg.Email.Provider)
	assert.Equal(t, "team@example.com", cfg.Email.TeamEmail)
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("STORAGE_DIR", "/tmp/store")
	t.Setenv("EMAIL_PROVIDER", "ses")
	t.Setenv("SES_REGION", "eu-west-1")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "/tmp/store", cfg.Storage.Dir)
	assert.Equal(t, "ses", cfg.Email.Provider)
	assert.Equal(t, "eu-west-1", cfg.Email.SES.Region)
}

func TestGetServerAddr(t *testing.T) {
	cfg := ServerConfig{Host: "127.0.0.1", Port: 8081}
	assert.Equal(t, "127.0.0.1:8081", cfg.GetServerAddr())
}
