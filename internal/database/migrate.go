package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/migrations"
	"github.com/pressly/goose/v3"
)

// MigrationsDir is where new migration files are created, relative to the repository root
const MigrationsDir = "migrations"

// MigrationCommands lists the goose commands the CLI exposes
var MigrationCommands = []string{"up", "down", "status", "version", "create"}

var ErrUnsupportedMigrationDriver = errors.New("sql migrations are only available for postgres; sqlite uses auto-migrate")

// Migrate runs a goose command against the embedded SQL migrations
func Migrate(ctx context.Context, cfg *config.DatabaseConfig, command string, args ...string) error {
	if command == "create" {
		if len(args) == 0 {
			return fmt.Errorf("create requires a migration name")
		}
		goose.SetBaseFS(nil)
		if err := goose.Create(nil, MigrationsDir, args[0], "sql"); err != nil {
			return fmt.Errorf("failed to create migration: %w", err)
		}
		return nil
	}

	if !isMigrationCommand(command) {
		return fmt.Errorf("unknown command: %s", command)
	}
	if cfg.Driver != "postgres" {
		return ErrUnsupportedMigrationDriver
	}

	db, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	goose.SetBaseFS(migrations.FS)
	defer goose.SetBaseFS(nil)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("failed to run %s: %w", command, err)
	}
	return nil
}

func isMigrationCommand(command string) bool {
	for _, c := range MigrationCommands {
		if c == command {
			return true
		}
	}
	return false
}
