package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/xiebiao/library/internal/infrastructure/config"
)

func newTokenCmd(configPath *string) *cobra.Command {
	var staffID, role string

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a staff bearer token for the mutating API routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			token, expiresAt, err := provideJWTManager(cfg).Issue(staffID, role)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&staffID, "staff", "", "staff id embedded in the token")
	cmd.Flags().StringVar(&role, "role", "librarian", "staff role")
	_ = cmd.MarkFlagRequired("staff")
	return cmd
}
