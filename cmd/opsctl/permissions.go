package main

import (
	"fmt"
	"strings"

	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/opsdesk/admin-api/internal/policy"
	"github.com/spf13/cobra"
)

func newPermissionsCmd() *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "permissions",
		Short: "Print the permissions granted to each role",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			engine := policy.Default()

			roles := domain.Roles
			if role != "" {
				if !domain.IsValidRole(role) {
					return fmt.Errorf("unknown role %q", role)
				}
				roles = []domain.Role{domain.Role(role)}
			}

			out := cmd.OutOrStdout()
			for _, r := range roles {
				perms := engine.Permissions(r)
				tokens := make([]string, len(perms))
				for i, p := range perms {
					tokens[i] = string(p)
				}
				fmt.Fprintf(out, "%s (%d)\n", r, len(perms))
				if len(tokens) > 0 {
					fmt.Fprintf(out, "  %s\n", strings.Join(tokens, "\n  "))
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", "", "only print this role")
	return cmd
}
