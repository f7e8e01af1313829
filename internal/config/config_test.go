package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{configPathEnv, "PORT", "APP_ENV", "NODE_ENV", "CLIENT_URL", "DATABASE_DRIVER",
		"DATABASE_URL", "SEED_DATA", "JWT_SECRET", "LOG_LEVEL", "COMMENT_RATE_LIMIT", "SITE_URL", "SITE_NAME"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load()

	assert.Equal(t, "10000", cfg.Server.Port)
	assert.Equal(t, EnvDevelopment, cfg.Server.Env)
	assert.Equal(t, []string{"http://localhost:4321"}, cfg.Server.ClientURLs)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 20, cfg.Comments.RateLimit)
	assert.True(t, cfg.SeedEnabled())
	assert.False(t, cfg.IsProduction())
	assert.NoError(t, cfg.Validate())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "quill.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "8080"
  env: production
  clientUrls: ["https://blog.example.com"]
  siteUrl: https://blog.example.com/
  siteName: Field Notes
database:
  driver: sqlite
  dsn: file:quill.db
  seed: false
auth:
  jwtSecret: from-file
comments:
  rateLimit: 5
`), 0o600))

	t.Setenv(configPathEnv, path)
	t.Setenv("PORT", "9090")
	t.Setenv("CLIENT_URL", "https://a.example.com, https://b.example.com")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.Server.ClientURLs)
	assert.Equal(t, "https://blog.example.com", cfg.Server.SiteURL)
	assert.Equal(t, "Field Notes", cfg.Server.SiteName)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:quill.db", cfg.Database.DSN)
	assert.False(t, cfg.SeedEnabled())
	assert.Equal(t, "from-file", cfg.Auth.JWTSecret)
	assert.Equal(t, 5, cfg.Comments.RateLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoadUnreadableFileKeepsDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv(configPathEnv, filepath.Join(t.TempDir(), "missing.yaml"))

	cfg := Load()
	assert.Equal(t, "10000", cfg.Server.Port)
}

func TestValidateRequiresSecretInProduction(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")

	cfg := Load()
	assert.ErrorContains(t, cfg.Validate(), "JWT_SECRET")

	cfg.Database.Driver = "mysql"
	assert.ErrorContains(t, cfg.Validate(), "postgres or sqlite")
}
