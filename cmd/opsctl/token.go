package main

import (
	"fmt"

	"github.com/opsdesk/admin-api/internal/auth"
	"github.com/opsdesk/admin-api/internal/domain"
	"github.com/spf13/cobra"
)

func newTokenCmd(load configLoader) *cobra.Command {
	var (
		userID uint
		role   string
		name   string
		email  string
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a signed bearer token for a user",
		Example: `  # Token for user 12 acting as a designer
  opsctl token --user-id 12 --role designer --name "Dana Designer"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == 0 {
				return fmt.Errorf("--user-id is required")
			}
			if !domain.IsValidRole(role) {
				return fmt.Errorf("unknown role %q, expected one of %v", role, domain.Roles)
			}

			cfg, err := load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			token, err := auth.NewJWTValidator(&cfg.Auth).IssueToken(&auth.UserContext{
				UserID:      userID,
				DisplayName: name,
				Email:       email,
				Role:        domain.Role(role),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().UintVar(&userID, "user-id", 0, "ID of the user the token identifies")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleContentWriter), "role carried by the token")
	cmd.Flags().StringVar(&name, "name", "", "display name claim")
	cmd.Flags().StringVar(&email, "email", "", "email claim")
	return cmd
}
