package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/edgard/steamguardbot/internal/config"
	"github.com/edgard/steamguardbot/internal/database"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or upgrade the account store schema and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if err := cfg.Database.Validate(); err != nil {
				return err
			}

			store, err := database.Open(cmd.Context(), cfg.Database.Driver, cfg.Database.Path, slog.Default().With("component", "cli"))
			if err != nil {
				return fmt.Errorf("failed to migrate %s store at %s: %w", cfg.Database.Driver, cfg.Database.Path, err)
			}
			if err := store.Close(); err != nil {
				return fmt.Errorf("failed to close store: %w", err)
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s store at %s is up to date\n", cfg.Database.Driver, cfg.Database.Path)
			return err
		},
	}
}
