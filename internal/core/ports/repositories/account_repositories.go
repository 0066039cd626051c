package repositories

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// AccountReader defines read operations over a tenant's chart of accounts.
type AccountReader interface {
	// FindAccountByCode retrieves an account by its hierarchical code within a tenant.
	FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)

	// FindAccountByID retrieves an account by its unique identifier.
	FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID.
	FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error)

	// ListChildren returns the direct children of the account with parentCode.
	ListChildren(ctx context.Context, tenantID, parentCode string) ([]domain.Account, error)
}

// AccountWriter is used only by provisioning; the ledger never mutates the tree.
type AccountWriter interface {
	// SaveAccounts inserts a batch of accounts, skipping codes that already exist.
	SaveAccounts(ctx context.Context, accounts []domain.Account) (int, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
}
