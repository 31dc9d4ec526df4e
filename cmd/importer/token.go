package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"catalog-importer/internal/config"
	"catalog-importer/pkg/jwt"
)

// newTokenCommand issues an admin bearer token for the import endpoints.
// It needs the JWT settings only, so no container is built.
func newTokenCommand() *cobra.Command {
	var (
		subject string
		email   string
	)

	cmd := &cobra.Command{
		Use:               "token",
		Short:             "Print an admin bearer token for the import API",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			m := jwt.NewManager(cfg.JWT.Secret, cfg.JWT.AccessTokenExpiry)
			token, err := m.GenerateAccessToken(subject, email, jwt.RoleAdmin)
			if err != nil {
				return fmt.Errorf("failed to sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "importer-cli", "Token subject (user_id claim)")
	cmd.Flags().StringVar(&email, "email", "", "Email claim")
	return cmd
}
