package services

import (
	"time"

	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
)

// Options tunes the services built by NewContainer.
type Options struct {
	Thresholds      domain.AlertThresholds
	Defaults        *DefaultMappings
	AccountCacheTTL time.Duration
	Clock           func() time.Time
}

// NewContainer wires every service against the given repositories.
func NewContainer(repos *portsrepo.RepositoryProvider, opts Options) *portssvc.ServiceContainer {
	if opts.Defaults == nil {
		opts.Defaults = MustDefaultMappings()
	}
	if opts.Thresholds.Warning.IsZero() && opts.Thresholds.Danger.IsZero() {
		opts.Thresholds = DefaultAlertThresholds
	}
	if opts.AccountCacheTTL == 0 {
		opts.AccountCacheTTL = defaultAccountCacheTTL
	}
	base := BaseService{Clock: opts.Clock}

	tree := &accountTreeService{
		BaseService: base,
		repo:        repos.AccountRepo,
		ttl:         opts.AccountCacheTTL,
		byCode:      make(map[string]cachedAccount),
		byID:        make(map[string]cachedAccount),
	}

	ledger := NewLedgerService(repos.TxManager, repos.LedgerRepo, tree, repos.EventQueue).(*ledgerService)
	ledger.BaseService = base

	mapping := NewMappingResolver(repos.MappingRepo, tree, opts.Defaults).(*mappingResolver)
	mapping.BaseService = base

	generators := NewGeneratorService(repos.TxManager, repos.LedgerRepo, ledger, mapping, repos.BillingRepo).(*generatorService)
	generators.BaseService = base

	budget := NewBudgetService(repos.TxManager, repos.BudgetRepo, repos.LedgerRepo, tree, repos.EventQueue, opts.Thresholds).(*budgetService)
	budget.BaseService = base

	return &portssvc.ServiceContainer{
		AccountTree: tree,
		Ledger:      ledger,
		Mapping:     mapping,
		Generators:  generators,
		Budget:      budget,
	}
}
