// Package main implements the entry point for the SGT API server,
// a role-gated task and board management backend with workflow-based
// task history and per-board analytics.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/sgt-project/sgt-api/internal/config"
	"github.com/sgt-project/sgt-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status, version) and exit")
	migrationsDir := flag.String("migrations-dir", "migrations", "directory holding the SQL migrations")
	flag.Parse()

	if err := run(*migrateCmd, *migrationsDir); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func run(migrateCmd, migrationsDir string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return err
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		return err
	}

	if migrateCmd != "" {
		defer func() {
			if err := db.Close(); err != nil {
				appLogger.Error("Failed to close database connection", "error", err)
			}
		}()
		return runMigrations(db, migrationsDir, migrateCmd)
	}

	app, err := newApplication(cfg, appLogger, db)
	if err != nil {
		return err
	}

	return app.startHTTPServer(context.Background(), app.setupRouter())
}
