package main

import (
	"fmt"
	"strings"

	"github.com/opsdesk/admin-api/internal/database"
	"github.com/spf13/cobra"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:       fmt.Sprintf("migrate [%s] [args]", strings.Join(database.MigrationCommands, "|")),
		Short:     "Run goose migrations against the configured database",
		Args:      cobra.MinimumNArgs(1),
		ValidArgs: database.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := database.Migrate(cmd.Context(), &cfg.Database, args[0], args[1:]...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
			return nil
		},
	}
}
