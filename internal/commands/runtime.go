package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propledger/ledgercore/internal/adapters/database/pgsql"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
	"github.com/propledger/ledgercore/internal/core/services"
	"github.com/propledger/ledgercore/internal/platform/config"
	"github.com/propledger/ledgercore/pkg/database"
)

// runtime is everything a long-running command needs.
type runtime struct {
	cfg      *config.Config
	pool     *pgxpool.Pool
	repos    *portsrepo.RepositoryProvider
	services *portssvc.ServiceContainer
}

func (r *runtime) Close() {
	database.ClosePgxPool(r.pool)
}

func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	defaults, err := services.LoadDefaultMappings(cfg.DefaultMappingsFile)
	if err != nil {
		return nil, fmt.Errorf("load default mappings: %w", err)
	}

	pool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		return nil, fmt.Errorf("initialize database pool: %w", err)
	}
	slog.Info("Database connection pool established.")

	repos := pgsql.NewRepositoryProvider(pool)
	svc := services.NewContainer(repos, services.Options{
		Thresholds:      cfg.AlertThresholds(),
		Defaults:        defaults,
		AccountCacheTTL: cfg.AccountCacheTTL,
	})

	return &runtime{cfg: cfg, pool: pool, repos: repos, services: svc}, nil
}
