package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/propledger/ledgercore/internal/provisioning"
)

func newSeedChartCommand() *cobra.Command {
	var tenantID, file, actor string

	cmd := &cobra.Command{
		Use:   "seed-chart",
		Short: "Provision a tenant's chart of accounts from a CSV template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := loadChart(file)
			if err != nil {
				return err
			}
			return runSeedChart(cmd.Context(), tenantID, rows, actor)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&file, "file", "", "CSV template; the built-in chart is used when empty")
	cmd.Flags().StringVar(&actor, "actor", "ledgerd", "user recorded as creator")

	return cmd
}

func loadChart(path string) ([]provisioning.ChartRow, error) {
	if path == "" {
		return provisioning.DefaultChart(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open chart template: %w", err)
	}
	defer f.Close()

	rows, err := provisioning.ReadChart(f)
	if err != nil {
		return nil, fmt.Errorf("read chart template %s: %w", path, err)
	}
	return rows, nil
}

func runSeedChart(ctx context.Context, tenantID string, rows []provisioning.ChartRow, actor string) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	var created int
	err = rt.repos.TxManager.WithinTransaction(ctx, func(ctx context.Context) error {
		n, seedErr := provisioning.SeedChart(ctx, rt.repos.AccountRepo, tenantID, rows, actor)
		created = n
		return seedErr
	})
	if err != nil {
		return fmt.Errorf("seed chart for tenant %s: %w", tenantID, err)
	}

	slog.Info("Chart of accounts seeded",
		slog.String("tenant_id", tenantID),
		slog.Int("accounts_created", created),
		slog.Int("template_rows", len(rows)))
	return nil
}
