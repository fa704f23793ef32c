package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ittullos/authgate/internal/auth/oidc"
	"github.com/ittullos/authgate/internal/config"
	"github.com/ittullos/authgate/internal/server"
	"github.com/ittullos/authgate/internal/store"
)

const version = "1.0.0"

func main() {
	configPath := flag.String("config", "/etc/authgate/config.yaml", "path to configuration file")
	configPathShort := flag.String("c", "/etc/authgate/config.yaml", "path to configuration file (short)")
	showVersion := flag.Bool("version", false, "show version and exit")
	showHelp := flag.Bool("help", false, "show help and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("authgate v%s\n", version)
		os.Exit(0)
	}

	if *showHelp {
		fmt.Println("authgate - OIDC session-authentication gateway")
		fmt.Println("\nUsage:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	cfgPath := *configPath
	if *configPathShort != "/etc/authgate/config.yaml" {
		cfgPath = *configPathShort
	}

	if err := run(cfgPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger := setupLogger(cfg.Logging)
	logger.Info("starting authgate", "version", version)

	sessionStore, err := store.New(cfg.Store, cfg.Session.MaxAge)
	if err != nil {
		return fmt.Errorf("failed to create session store: %w", err)
	}
	logger.Info("session store initialized", "type", cfg.Store.Type)

	ctx := context.Background()
	callbackURL := cfg.Server.BaseURL + "/auth/callback"

	exchanger, err := oidc.NewProvider(ctx, cfg.Provider, callbackURL, sessionStore)
	if err != nil {
		return fmt.Errorf("failed to create OIDC provider: %w", err)
	}
	logger.Info("provider initialized", "domain", cfg.Provider.Domain)

	srv, err := server.New(*cfg, sessionStore, exchanger, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
