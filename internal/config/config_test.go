package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
server:
  base_url: https://app.example.com
backend:
  url: http://localhost:3000
provider:
  domain: tenant.us.auth0.com
  client_id: client-id-1
  client_secret: shhh
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "authgate-session", cfg.Server.CookieName)
	assert.Equal(t, "lax", cfg.Server.CookieSameSite)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, []string{"openid", "email", "profile"}, cfg.Provider.Scopes)
	assert.Equal(t, 24*time.Hour, cfg.Session.MaxAge)
	assert.Equal(t, "/", cfg.Session.LandingPath)
	assert.Equal(t, "/", cfg.Session.FailurePath)
	assert.Equal(t, "/auth/login", cfg.Session.LoginPath)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestProviderIssuer(t *testing.T) {
	p := ProviderConfig{Domain: "tenant.us.auth0.com"}
	assert.Equal(t, "https://tenant.us.auth0.com/", p.Issuer())
}

func TestLoadSecretsFromEnv(t *testing.T) {
	t.Setenv("AUTH0_DOMAIN", "other.eu.auth0.com")
	t.Setenv("AUTH0_CLIENT_ID", "env-client")
	t.Setenv("AUTH0_CLIENT_SECRET", "env-secret")

	cfg, err := Load(writeConfig(t, minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "other.eu.auth0.com", cfg.Provider.Domain)
	assert.Equal(t, "env-client", cfg.Provider.ClientID)
	assert.Equal(t, "env-secret", cfg.Provider.ClientSecret)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing base_url", func(c *Config) { c.Server.BaseURL = "" }},
		{"bad same_site", func(c *Config) { c.Server.CookieSameSite = "sideways" }},
		{"missing backend url", func(c *Config) { c.Backend.URL = "" }},
		{"bad store type", func(c *Config) { c.Store.Type = "postgres" }},
		{"redis without config", func(c *Config) { c.Store.Type = "redis"; c.Store.Redis = nil }},
		{"domain is a URL", func(c *Config) { c.Provider.Domain = "https://tenant.us.auth0.com" }},
		{"missing client_id", func(c *Config) { c.Provider.ClientID = "" }},
		{"missing client_secret", func(c *Config) { c.Provider.ClientSecret = "" }},
		{"no openid scope", func(c *Config) { c.Provider.Scopes = []string{"email"} }},
		{"max_age too small", func(c *Config) { c.Session.MaxAge = time.Second }},
		{"relative landing path", func(c *Config) { c.Session.LandingPath = "dashboard" }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeConfig(t, minimalYAML))
			require.NoError(t, err)
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
