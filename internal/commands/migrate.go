package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/propledger/ledgercore/internal/platform/config"
	"github.com/propledger/ledgercore/pkg/database"
)

func newMigrateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(database.MigrateUp, 0)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(database.MigrateDown, steps)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back (0 rolls back all)")

	cmd.AddCommand(up, down)
	return cmd
}

func runMigrate(direction database.MigrationDirection, steps int) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	slog.Info("Running database migrations...", slog.String("direction", string(direction)))
	changed, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, direction, steps)
	if err != nil {
		return err
	}
	if changed {
		slog.Info("Database migrations applied successfully.")
	} else {
		slog.Info("No new migrations to apply.")
	}
	return nil
}
