package main

import (
	"github.com/opsdesk/admin-api/internal/config"
	"github.com/spf13/cobra"
)

var version = "1.0.0"

// configLoader is swapped in tests to avoid reading the environment
type configLoader func() (*config.Config, error)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func newRootCmd(load configLoader) *cobra.Command {
	root := &cobra.Command{
		Use:   "opsctl",
		Short: "Operator tools for the Opsdesk admin API",
		Long: `opsctl wraps the maintenance tasks operators run against the admin API:
issuing bearer tokens, inspecting the role permission tables and
applying database migrations.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newTokenCmd(load),
		newPermissionsCmd(),
		newMigrateCmd(load),
	)
	return root
}
