package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/propledger/ledgercore/internal/middleware"
	"github.com/propledger/ledgercore/internal/platform/config"
)

func newIssueTokenCommand() *cobra.Command {
	var subject string
	var tenants []string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "issue-token",
		Short: "Print a query API token scoped to tenants",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			token, err := middleware.GenerateToken(subject, cfg.JWTSecret, ttl, tenants)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "", "token subject, e.g. a service name (required)")
	_ = cmd.MarkFlagRequired("subject")
	cmd.Flags().StringSliceVar(&tenants, "tenant", nil, `tenant IDs to grant; "*" grants all (required)`)
	_ = cmd.MarkFlagRequired("tenant")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	return cmd
}
