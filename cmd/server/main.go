// Package main implements the entry point for the flashstack server,
// a single-user flashcards service with a nested topic tree, study
// aggregation, and JSON import/export.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/jwhitt/flashstack/internal/config"
	"github.com/jwhitt/flashstack/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		fmt.Fprintf(os.Stderr, "flashstack: %v\n", err)
		os.Exit(1)
	}
}

func run(migrateCmd string) error {
	// A missing .env file is fine; real deployments set the environment
	// directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("set up logger: %w", err)
	}

	if migrateCmd != "" {
		return runMigrations(cfg, migrateCmd, log)
	}

	app, err := newApplication(cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}
	defer app.cleanup()

	log.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel))

	return app.serve()
}
