// Package main implements the entry point for the review API server, the
// spaced-repetition scheduling service for student practice.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/lernia/review-api/internal/config"
	"github.com/lernia/review-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run migrations: up, down, or status")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if _, err := logger.Setup(logger.Config{Level: cfg.Server.LogLevel}); err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"session_backend", sessionBackendName(cfg))

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd); err != nil {
			slog.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := run(cfg); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx := context.Background()

	db, err := setupDatabase(cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("database setup failed: %w", err)
	}

	app, err := newApplication(ctx, cfg, slog.Default(), db)
	if err != nil {
		return fmt.Errorf("application setup failed: %w", err)
	}

	return app.Run(ctx)
}

func sessionBackendName(cfg *config.Config) string {
	if cfg.Session.RedisAddr != "" {
		return "redis"
	}
	return "memory"
}
