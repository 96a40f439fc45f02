package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tradepost/keycloak-plugins/internal/pkg/config"
	"github.com/tradepost/keycloak-plugins/pkg/logger"
)

func newPromoteAdminCommand() *cobra.Command {
	var email, role string

	cmd := &cobra.Command{
		Use:   "promote-admin",
		Short: "Promote an existing customer to administrator with a role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if email == "" {
				return fmt.Errorf("--email is required")
			}
			if role == "" {
				return fmt.Errorf("--role is required")
			}

			ctx := cmd.Context()
			cfg, err := config.Load(ctx)
			if err != nil {
				return err
			}
			logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true, Service: "keycloak-plugins"})

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.close(ctx)

			if !a.admins.Promote(ctx, email, role) {
				return fmt.Errorf("promotion of %s to %s failed, see log for details", email, role)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now an administrator with role %s\n", email, role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Email address of the customer to promote")
	cmd.Flags().StringVar(&role, "role", "", "Code of the role to grant")
	return cmd
}
