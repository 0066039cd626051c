package services

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// RefreshOutcome is the result of recomputing one execution row.
type RefreshOutcome struct {
	Row *domain.BudgetExecution
	// Crossed is the level newly reached by this refresh: the level rose, or the variance changed
	// direction while above a threshold. AlertNone otherwise.
	Crossed domain.AlertLevel
}

// BudgetAggregatorSvc keeps actual amounts in step with posted entries.
type BudgetAggregatorSvc interface {
	// Refresh recomputes actual and variance for (account, year, month). Returns nil outcome
	// when no budget row exists for the tuple.
	Refresh(ctx context.Context, tenantID, accountID string, year, month int) (*RefreshOutcome, error)

	// RefreshForTransaction refreshes each account for the period and publishes one batched alert for
	// every threshold crossed.
	RefreshForTransaction(ctx context.Context, tenantID string, accountIDs []string, period domain.Period) (*domain.BudgetAlert, error)
}

// BudgetPlannerSvc manages budgeted amounts.
type BudgetPlannerSvc interface {
	// ActivateBudget stores approved budget lines for a year and refreshes their actuals.
	ActivateBudget(ctx context.Context, tenantID string, year int, lines []domain.BudgetLine) error

	// ListExecution returns the rows of a period.
	ListExecution(ctx context.Context, tenantID string, year, month int) ([]domain.BudgetExecution, error)
}

// BudgetSvcFacade combines the budget service interfaces.
type BudgetSvcFacade interface {
	BudgetAggregatorSvc
	BudgetPlannerSvc
}
