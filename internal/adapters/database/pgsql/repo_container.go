package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

// NewRepositoryProvider wires every repository port to dbPool. All repositories share the
// context-carried transaction of the transaction manager.
func NewRepositoryProvider(dbPool *pgxpool.Pool) *portsrepo.RepositoryProvider {
	accountRepo := newPgxAccountRepository(dbPool)
	ledgerRepo := newPgxLedgerRepository(dbPool)
	mappingRepo := newPgxMappingRepository(dbPool)
	budgetRepo := newPgxBudgetRepository(dbPool)
	billingRepo := newPgxBillingRepository(dbPool)
	eventQueue := newPgxEventQueue(dbPool)

	return &portsrepo.RepositoryProvider{
		TxManager:   &BaseRepository{Pool: dbPool},
		AccountRepo: accountRepo,
		LedgerRepo:  ledgerRepo,
		MappingRepo: mappingRepo,
		BudgetRepo:  budgetRepo,
		BillingRepo: billingRepo,
		EventQueue:  eventQueue,
	}
}
