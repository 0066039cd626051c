package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build metadata, set with -ldflags at release time.
var (
	Version = "dev"
	Commit  = "none"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "ledgerd",
		Short:   "Property-management accounting ledger",
		Version: fmt.Sprintf("%s (commit: %s)", Version, Commit),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
		},
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newWorkerCommand(),
		newMigrateCommand(),
		newSeedChartCommand(),
		newActivateBudgetCommand(),
		newIssueTokenCommand(),
	)

	return rootCmd
}
