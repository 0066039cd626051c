package repositories

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// BudgetRepository stores budget execution rows.
type BudgetRepository interface {
	// FindExecution returns the row for (account, year, month), or ErrNotFound when no budget exists.
	FindExecution(ctx context.Context, tenantID, accountID string, year, month int) (*domain.BudgetExecution, error)

	// UpsertBudgeted creates the row or replaces its budgeted amount, leaving the actual untouched.
	UpsertBudgeted(ctx context.Context, row domain.BudgetExecution) error

	// SaveExecution stores recomputed actual/variance/alert columns of an existing row.
	SaveExecution(ctx context.Context, row domain.BudgetExecution) error

	// ListExecution returns the rows of a period ordered by account code.
	ListExecution(ctx context.Context, tenantID string, year, month int) ([]domain.BudgetExecution, error)
}
