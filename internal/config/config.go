package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Backend  BackendConfig  `yaml:"backend"`
	Store    StoreConfig    `yaml:"store"`
	Provider ProviderConfig `yaml:"provider"`
	Session  SessionConfig  `yaml:"session"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	BaseURL        string `yaml:"base_url"`
	CookieName     string `yaml:"cookie_name"`
	CookieDomain   string `yaml:"cookie_domain"`
	CookieSecure   bool   `yaml:"cookie_secure"`
	CookieHTTPOnly bool   `yaml:"cookie_http_only"`
	CookieSameSite string `yaml:"cookie_same_site"`
}

type BackendConfig struct {
	URL          string        `yaml:"url"`
	Timeout      time.Duration `yaml:"timeout"`
	PreserveHost bool          `yaml:"preserve_host"`
}

type StoreConfig struct {
	Type  string       `yaml:"type"`
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

type RedisConfig struct {
	Address    string `yaml:"address"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	PoolSize   int    `yaml:"pool_size"`
	MaxRetries int    `yaml:"max_retries"`
}

// ProviderConfig points at the upstream OIDC provider. Domain is the bare
// provider host (for example tenant.us.auth0.com); the issuer URL is derived
// from it.
type ProviderConfig struct {
	Domain       string   `yaml:"domain"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	Scopes       []string `yaml:"scopes"`
}

// Issuer returns the OIDC issuer URL for discovery.
func (p ProviderConfig) Issuer() string {
	return "https://" + p.Domain + "/"
}

type SessionConfig struct {
	// MaxAge bounds session freshness; stored sessions older than this are
	// treated as signed out.
	MaxAge time.Duration `yaml:"max_age"`

	// LandingPath is where a fresh login goes when no redirect was pending.
	LandingPath string `yaml:"landing_path"`

	// FailurePath is the public page a failed authentication falls back to.
	FailurePath string `yaml:"failure_path"`

	LoginPath string `yaml:"login_path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.setDefaults(); err != nil {
		return nil, fmt.Errorf("failed to set defaults: %w", err)
	}

	if err := cfg.loadSecretsFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load secrets from environment: %w", err)
	}

	return &cfg, nil
}

func (c *Config) setDefaults() error {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.CookieName == "" {
		c.Server.CookieName = "authgate-session"
	}
	if c.Server.CookieHTTPOnly == false {
		c.Server.CookieHTTPOnly = true
	}
	if c.Server.CookieSameSite == "" {
		c.Server.CookieSameSite = "lax"
	}

	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = 30 * time.Second
	}

	if c.Store.Type == "" {
		c.Store.Type = "memory"
	}

	if c.Store.Type == "redis" && c.Store.Redis != nil {
		if c.Store.Redis.PoolSize == 0 {
			c.Store.Redis.PoolSize = 10
		}
		if c.Store.Redis.MaxRetries == 0 {
			c.Store.Redis.MaxRetries = 3
		}
	}

	if len(c.Provider.Scopes) == 0 {
		c.Provider.Scopes = []string{"openid", "email", "profile"}
	}

	if c.Session.MaxAge == 0 {
		c.Session.MaxAge = 24 * time.Hour
	}
	if c.Session.LandingPath == "" {
		c.Session.LandingPath = "/"
	}
	if c.Session.FailurePath == "" {
		c.Session.FailurePath = "/"
	}
	if c.Session.LoginPath == "" {
		c.Session.LoginPath = "/auth/login"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}

	return nil
}

func (c *Config) loadSecretsFromEnv() error {
	if envDomain := os.Getenv("AUTH0_DOMAIN"); envDomain != "" {
		c.Provider.Domain = envDomain
	}
	if envClientID := os.Getenv("AUTH0_CLIENT_ID"); envClientID != "" {
		c.Provider.ClientID = envClientID
	}
	if envClientSecret := os.Getenv("AUTH0_CLIENT_SECRET"); envClientSecret != "" {
		c.Provider.ClientSecret = envClientSecret
	}

	if c.Store.Type == "redis" && c.Store.Redis != nil {
		if envPassword := os.Getenv("REDIS_PASSWORD"); envPassword != "" {
			c.Store.Redis.Password = envPassword
		}
	}

	return nil
}
