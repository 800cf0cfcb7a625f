package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/opsdesk/admin-api/internal/config"
	"github.com/opsdesk/admin-api/internal/database"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Migration error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := os.Args[1:]
	if len(args) == 0 {
		return fmt.Errorf("usage: migrate [%s]", strings.Join(database.MigrationCommands, "|"))
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	command := args[0]
	if err := database.Migrate(context.Background(), &cfg.Database, command, args[1:]...); err != nil {
		return err
	}

	switch command {
	case "up":
		fmt.Println("Migrations applied successfully")
	case "down":
		fmt.Println("Migration rolled back successfully")
	case "create":
		fmt.Printf("Migration created: %s\n", args[1])
	}
	return nil
}
