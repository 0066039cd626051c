package commands

import (
	"context"
	"errors"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/propledger/ledgercore/internal/events"
	"github.com/propledger/ledgercore/internal/worker"
)

func newWorkerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Consume domain events and generate ledger transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWorker(ctx)
		},
	}
}

func runWorker(ctx context.Context) error {
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()

	dispatcher := events.NewDispatcher()
	events.RegisterLedgerHandlers(dispatcher, rt.services)

	w := worker.New(rt.repos.EventQueue, dispatcher, worker.Config{
		Concurrency:    rt.cfg.WorkerConcurrency,
		PollInterval:   rt.cfg.WorkerPollInterval,
		BatchSize:      rt.cfg.WorkerBatchSize,
		MaxAttempts:    rt.cfg.EventMaxAttempts,
		RetryBaseDelay: rt.cfg.EventRetryBaseDelay,
	}, slog.Default())

	err = w.Run(ctx)
	if errors.Is(err, context.Canceled) {
		slog.Info("Worker stopped")
		return nil
	}
	return err
}
