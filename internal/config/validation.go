package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.validateBackend(); err != nil {
		return fmt.Errorf("backend config: %w", err)
	}

	if err := c.validateStore(); err != nil {
		return fmt.Errorf("store config: %w", err)
	}

	if err := c.validateProvider(); err != nil {
		return fmt.Errorf("provider config: %w", err)
	}

	if err := c.validateSession(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}

	if err := c.validateLogging(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	if c.Server.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}

	if _, err := url.Parse(c.Server.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}

	sameSite := strings.ToLower(c.Server.CookieSameSite)
	if sameSite != "lax" && sameSite != "strict" && sameSite != "none" {
		return fmt.Errorf("invalid cookie_same_site: %s (must be lax, strict, or none)", c.Server.CookieSameSite)
	}

	return nil
}

func (c *Config) validateBackend() error {
	if c.Backend.URL == "" {
		return fmt.Errorf("url is required")
	}

	if _, err := url.Parse(c.Backend.URL); err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}

	if c.Backend.Timeout < 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

func (c *Config) validateStore() error {
	if c.Store.Type != "memory" && c.Store.Type != "redis" {
		return fmt.Errorf("invalid type: %s (must be memory or redis)", c.Store.Type)
	}

	if c.Store.Type == "redis" {
		if c.Store.Redis == nil {
			return fmt.Errorf("redis config is required when type is redis")
		}
		if c.Store.Redis.Address == "" {
			return fmt.Errorf("redis address is required")
		}
	}

	return nil
}

func (c *Config) validateProvider() error {
	if c.Provider.Domain == "" {
		return fmt.Errorf("domain is required")
	}

	if strings.Contains(c.Provider.Domain, "://") {
		return fmt.Errorf("domain must be a bare host, not a URL: %s", c.Provider.Domain)
	}

	if c.Provider.ClientID == "" {
		return fmt.Errorf("client_id is required")
	}

	if c.Provider.ClientSecret == "" {
		return fmt.Errorf("client_secret is required")
	}

	hasOpenID := false
	for _, scope := range c.Provider.Scopes {
		if scope == "openid" {
			hasOpenID = true
			break
		}
	}
	if !hasOpenID {
		return fmt.Errorf("'openid' scope is required")
	}

	return nil
}

func (c *Config) validateSession() error {
	if c.Session.MaxAge < time.Minute {
		return fmt.Errorf("max_age must be at least 1 minute")
	}

	for _, path := range []string{c.Session.LandingPath, c.Session.FailurePath, c.Session.LoginPath} {
		if !strings.HasPrefix(path, "/") {
			return fmt.Errorf("paths must be absolute, got: %s", path)
		}
	}

	return nil
}

func (c *Config) validateLogging() error {
	level := strings.ToLower(c.Logging.Level)
	if level != "debug" && level != "info" && level != "warn" && level != "error" {
		return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", c.Logging.Level)
	}

	format := strings.ToLower(c.Logging.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format: %s (must be json or text)", c.Logging.Format)
	}

	return nil
}
