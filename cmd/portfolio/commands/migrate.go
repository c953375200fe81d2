package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/terra-clan/portfolio/internal/config"
	"github.com/terra-clan/portfolio/internal/storage"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if !cfg.Database.UsesPostgres() {
			return fmt.Errorf("DATABASE_DSN is required to run migrations")
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()

		if err := storage.MigrateFromDSN(ctx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			return err
		}
		slog.Info("migrations applied", "dir", cfg.Database.MigrationsDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
