// Package worker drains the domain event queue.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/propledger/ledgercore/internal/apperrors"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	"github.com/propledger/ledgercore/internal/events"
	"github.com/propledger/ledgercore/internal/middleware"
)

// Config controls polling and the retry policy.
type Config struct {
	Concurrency    int
	PollInterval   time.Duration
	BatchSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
	MaxRetryDelay  time.Duration
	Lease          time.Duration
}

// DefaultConfig returns the settings used when a field is left zero.
func DefaultConfig() Config {
	return Config{
		Concurrency:    4,
		PollInterval:   time.Second,
		BatchSize:      20,
		MaxAttempts:    8,
		RetryBaseDelay: 2 * time.Second,
		MaxRetryDelay:  10 * time.Minute,
		Lease:          2 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Concurrency <= 0 {
		c.Concurrency = d.Concurrency
	}
	if c.PollInterval <= 0 {
		c.PollInterval = d.PollInterval
	}
	if c.BatchSize <= 0 {
		c.BatchSize = d.BatchSize
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = d.MaxAttempts
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = d.RetryBaseDelay
	}
	if c.MaxRetryDelay <= 0 {
		c.MaxRetryDelay = d.MaxRetryDelay
	}
	if c.Lease <= 0 {
		c.Lease = d.Lease
	}
	return c
}

// Outcome is what happened to one delivery.
type Outcome string

const (
	OutcomeAcked   Outcome = "acked"
	OutcomeRetried Outcome = "retried"
	OutcomeBuried  Outcome = "buried"
)

// Stats counts outcomes of one poll.
type Stats struct {
	Acked   int
	Retried int
	Buried  int
}

// Worker claims due events and dispatches them concurrently.
type Worker struct {
	queue      portsrepo.EventQueue
	dispatcher *events.Dispatcher
	cfg        Config
	logger     *slog.Logger
	now        func() time.Time
}

// New creates a worker.
func New(queue portsrepo.EventQueue, dispatcher *events.Dispatcher, cfg Config, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		queue:      queue,
		dispatcher: dispatcher,
		cfg:        cfg.withDefaults(),
		logger:     logger.With(slog.String("component", "worker")),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the clock used to schedule retries.
func (w *Worker) SetClock(now func() time.Time) {
	w.now = now
}

// Run polls until ctx is cancelled. A poll that finds a full batch is followed immediately by another.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("Worker started",
		slog.Int("concurrency", w.cfg.Concurrency),
		slog.Duration("poll_interval", w.cfg.PollInterval),
		slog.Any("events", w.dispatcher.Names()))

	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		stats, err := w.RunOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("Poll failed", slog.String("error", err.Error()))
		}
		busy := err == nil && stats.Acked+stats.Retried+stats.Buried >= w.cfg.BatchSize
		if busy {
			if ctx.Err() != nil {
				break
			}
			continue
		}
		select {
		case <-ctx.Done():
			w.logger.Info("Worker stopped")
			return nil
		case <-ticker.C:
		}
	}
	w.logger.Info("Worker stopped")
	return nil
}

// RunOnce claims one batch and handles it with at most Concurrency events in flight.
func (w *Worker) RunOnce(ctx context.Context) (Stats, error) {
	claimed, err := w.queue.Claim(ctx, w.dispatcher.Names(), w.cfg.BatchSize, w.cfg.Lease)
	if err != nil {
		return Stats{}, err
	}
	if len(claimed) == 0 {
		return Stats{}, nil
	}

	var (
		mu    sync.Mutex
		stats Stats
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)
	for _, evt := range claimed {
		g.Go(func() error {
			outcome, err := w.handle(gctx, evt)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeAcked:
				stats.Acked++
			case OutcomeRetried:
				stats.Retried++
			case OutcomeBuried:
				stats.Buried++
			}
			return nil
		})
	}
	err = g.Wait()
	return stats, err
}

// handle dispatches one event and settles it on the queue. Only queue failures are returned;
// handler failures are recorded on the event.
func (w *Worker) handle(ctx context.Context, evt portsrepo.QueuedEvent) (Outcome, error) {
	logger := w.logger.With(
		slog.String("event_id", evt.EventID),
		slog.String("event", string(evt.Name)),
		slog.String("tenant_id", evt.TenantID),
		slog.Int("attempt", evt.Attempts),
	)
	ctx = middleware.WithLogger(ctx, logger)

	handlerErr := w.dispatcher.Dispatch(ctx, evt)
	if handlerErr == nil {
		logger.Debug("Event handled")
		return OutcomeAcked, w.queue.Ack(ctx, evt.EventID)
	}

	kind := apperrors.KindOf(handlerErr)
	if kind == apperrors.KindFatal || evt.Attempts >= w.cfg.MaxAttempts {
		logger.Error("Event moved to dead letter",
			slog.String("error", handlerErr.Error()), slog.String("kind", kind.String()))
		return OutcomeBuried, w.queue.Bury(ctx, evt.EventID, handlerErr.Error())
	}

	retryAt := w.now().Add(Backoff(w.cfg.RetryBaseDelay, w.cfg.MaxRetryDelay, evt.Attempts))
	logger.Warn("Event failed, will retry",
		slog.String("error", handlerErr.Error()), slog.Time("retry_at", retryAt))
	return OutcomeRetried, w.queue.Retry(ctx, evt.EventID, retryAt, handlerErr.Error())
}

// Backoff returns base doubled for every attempt after the first, capped at maxDelay.
func Backoff(base, maxDelay time.Duration, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d >= maxDelay {
			return maxDelay
		}
	}
	if d > maxDelay {
		return maxDelay
	}
	return d
}
