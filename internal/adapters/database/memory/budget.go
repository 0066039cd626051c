package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

var _ portsrepo.BudgetRepository = (*Store)(nil)

func budgetKey(tenantID, accountID string, year, month int) string {
	return fmt.Sprintf("%s|%s|%d|%d", tenantID, accountID, year, month)
}

// FindExecution implements portsrepo.BudgetRepository.
func (s *Store) FindExecution(_ context.Context, tenantID, accountID string, year, month int) (*domain.BudgetExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row, ok := s.budgets[budgetKey(tenantID, accountID, year, month)]
	if !ok {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no budget for account %s in %04d-%02d", accountID, year, month))
	}
	return &row, nil
}

// UpsertBudgeted implements portsrepo.BudgetRepository.
func (s *Store) UpsertBudgeted(_ context.Context, row domain.BudgetExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := budgetKey(row.TenantID, row.AccountID, row.Year, row.Month)
	if existing, ok := s.budgets[key]; ok {
		existing.BudgetedAmount = row.BudgetedAmount
		existing.AccountCode = row.AccountCode
		existing.AccountName = row.AccountName
		s.budgets[key] = existing
		return nil
	}
	s.budgets[key] = row
	return nil
}

// SaveExecution implements portsrepo.BudgetRepository.
func (s *Store) SaveExecution(_ context.Context, row domain.BudgetExecution) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := budgetKey(row.TenantID, row.AccountID, row.Year, row.Month)
	existing, ok := s.budgets[key]
	if !ok {
		return apperrors.NewNotFoundError("budget execution row not found")
	}
	existing.ActualAmount = row.ActualAmount
	existing.VarianceAmount = row.VarianceAmount
	existing.VariancePercentage = row.VariancePercentage
	existing.AlertLevel = row.AlertLevel
	existing.RefreshedAt = row.RefreshedAt
	s.budgets[key] = existing
	return nil
}

// ListExecution implements portsrepo.BudgetRepository.
func (s *Store) ListExecution(_ context.Context, tenantID string, year, month int) ([]domain.BudgetExecution, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows := make([]domain.BudgetExecution, 0)
	for _, row := range s.budgets {
		if row.TenantID == tenantID && row.Year == year && row.Month == month {
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].AccountCode < rows[j].AccountCode })
	return rows, nil
}
