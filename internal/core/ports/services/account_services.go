package services

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// AccountTreeSvc exposes the read-only chart of accounts.
type AccountTreeSvc interface {
	// ResolveByCode returns the account with code; unknown codes are an error, never a default.
	ResolveByCode(ctx context.Context, tenantID, code string) (*domain.Account, error)

	// ResolveByID returns the account with the given ID.
	ResolveByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error)

	// ResolvePostable resolves code and fails with ErrInvalidAccount unless the account accepts postings.
	ResolvePostable(ctx context.Context, tenantID, code string) (*domain.Account, error)

	// ChildrenOf returns the direct children of account.
	ChildrenOf(ctx context.Context, account domain.Account) ([]domain.Account, error)

	// IsPostable reports whether entries may be recorded against account.
	IsPostable(account domain.Account) bool
}
