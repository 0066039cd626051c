package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/propledger/ledgercore/internal/provisioning"
)

func newActivateBudgetCommand() *cobra.Command {
	var tenantID, file string

	cmd := &cobra.Command{
		Use:   "activate-budget",
		Short: "Store an approved yearly budget and compute its execution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open budget plan: %w", err)
			}
			defer f.Close()

			plan, err := provisioning.ReadBudgetPlan(f)
			if err != nil {
				return fmt.Errorf("read budget plan %s: %w", file, err)
			}
			return runActivateBudget(cmd.Context(), tenantID, plan)
		},
	}

	cmd.Flags().StringVar(&tenantID, "tenant", "", "tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().StringVar(&file, "file", "", "YAML budget plan (required)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func runActivateBudget(ctx context.Context, tenantID string, plan *provisioning.BudgetPlan) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.services.Budget.ActivateBudget(ctx, tenantID, plan.Year, plan.Lines); err != nil {
		return fmt.Errorf("activate budget for tenant %s: %w", tenantID, err)
	}
	slog.Info("Budget activated",
		slog.String("tenant_id", tenantID),
		slog.Int("year", plan.Year),
		slog.Int("lines", len(plan.Lines)))
	return nil
}
