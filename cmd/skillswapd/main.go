// SkillSwap backend server.
//
// This is the main entry point for the SkillSwap API: JWT authentication
// with an access/refresh token pair, user accounts backed by SQLite, and a
// WebSocket channel for per-user real-time notifications.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/skillswap/skillswap-core/migrations"

	"github.com/skillswap/skillswap-core/internal/api"
	"github.com/skillswap/skillswap-core/internal/auth"
	"github.com/skillswap/skillswap-core/internal/infrastructure/config"
	"github.com/skillswap/skillswap-core/internal/infrastructure/database"
	"github.com/skillswap/skillswap-core/internal/infrastructure/logging"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Cancel on interrupt signals (Ctrl+C, SIGTERM) for graceful shutdown.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting SkillSwap backend",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Wire the auth core
	store := auth.NewUserStore(db.DB)

	issuer, err := auth.NewIssuer(
		cfg.JWT.AccessSecret,
		cfg.JWT.RefreshSecret,
		cfg.GetAccessTTL(),
		cfg.GetRefreshTTL(),
	)
	if err != nil {
		return fmt.Errorf("creating token issuer: %w", err)
	}

	service := auth.NewService(store, issuer)

	// Seed the initial admin account on first run
	if _, seedErr := auth.SeedAdmin(ctx, store, log.Logger); seedErr != nil {
		return fmt.Errorf("seeding admin account: %w", seedErr)
	}

	// Start the API server
	server, err := api.New(api.Deps{
		Config:  cfg.Server,
		WS:      cfg.WebSocket,
		Logger:  log,
		Auth:    service,
		Issuer:  issuer,
		Users:   store,
		DB:      db,
		Version: version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify infrastructure is healthy
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal",
		"address", fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server (drains in-flight requests, disconnects WebSocket clients)
	// 2. Database

	log.Info("SkillSwap backend stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses SKILLSWAP_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("SKILLSWAP_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}
