package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
	"github.com/propledger/ledgercore/internal/utils/accounting"
)

// DefaultAlertThresholds are the absolute variance percentages used when none are configured.
var DefaultAlertThresholds = domain.AlertThresholds{
	Warning: decimal.NewFromInt(10),
	Danger:  decimal.NewFromInt(25),
}

// budgetService recomputes execution rows from posted entries. Refreshing is always a full
// recomputation, so repeated or out-of-order refreshes converge on the same row.
type budgetService struct {
	BaseService
	txm        portsrepo.TransactionManager
	repo       portsrepo.BudgetRepository
	ledger     portsrepo.LedgerReader
	accounts   portssvc.AccountTreeSvc
	events     portsrepo.EventPublisher
	thresholds domain.AlertThresholds
	validate   *validator.Validate
}

// NewBudgetService creates the budget execution aggregator.
func NewBudgetService(
	txm portsrepo.TransactionManager,
	repo portsrepo.BudgetRepository,
	ledger portsrepo.LedgerReader,
	accounts portssvc.AccountTreeSvc,
	events portsrepo.EventPublisher,
	thresholds domain.AlertThresholds,
) portssvc.BudgetSvcFacade {
	return &budgetService{
		txm:        txm,
		repo:       repo,
		ledger:     ledger,
		accounts:   accounts,
		events:     events,
		thresholds: thresholds,
		validate:   validator.New(),
	}
}

var _ portssvc.BudgetSvcFacade = (*budgetService)(nil)

// Refresh implements portssvc.BudgetAggregatorSvc.
func (s *budgetService) Refresh(ctx context.Context, tenantID, accountID string, year, month int) (*portssvc.RefreshOutcome, error) {
	period, err := domain.NewPeriod(year, month)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}

	var outcome *portssvc.RefreshOutcome
	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		row, err := s.repo.FindExecution(ctx, tenantID, accountID, year, month)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil
			}
			return err
		}
		account, err := s.accounts.ResolveByID(ctx, tenantID, accountID)
		if err != nil {
			return err
		}

		debit, credit, err := s.ledger.SumPostedEntries(ctx, tenantID, accountID, period.Start(), period.End())
		if err != nil {
			return fmt.Errorf("failed to sum postings of %s for %s: %w", account.Code, period, err)
		}
		actual, err := accounting.SignedAmount(domain.Entry{AccountID: accountID, DebitAmount: debit, CreditAmount: credit}, account.NormalBalance)
		if err != nil {
			return err
		}

		previous, previousPct := row.AlertLevel, row.VariancePercentage
		row.ApplyActual(actual)
		row.AlertLevel = s.thresholds.LevelFor(row.VariancePercentage)
		row.RefreshedAt = s.Now()
		if err := s.repo.SaveExecution(ctx, *row); err != nil {
			return err
		}

		outcome = &portssvc.RefreshOutcome{Row: row, Crossed: domain.AlertNone}
		// moving from under-execution to overspend (or back) is a new crossing at the same level
		flipped := previousPct.Sign() != 0 && row.VariancePercentage.Sign() != previousPct.Sign()
		if row.AlertLevel != domain.AlertNone && (row.AlertLevel.Rank() > previous.Rank() || flipped) {
			outcome.Crossed = row.AlertLevel
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to refresh budget execution",
			slog.String("tenant_id", tenantID), slog.String("account_id", accountID), slog.String("period", period.String()))
		return nil, err
	}
	return outcome, nil
}

// RefreshForTransaction implements portssvc.BudgetAggregatorSvc.
func (s *budgetService) RefreshForTransaction(ctx context.Context, tenantID string, accountIDs []string, period domain.Period) (*domain.BudgetAlert, error) {
	var alert *domain.BudgetAlert
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		pending := &domain.BudgetAlert{TenantID: tenantID, Year: period.Year, Month: int(period.Month)}
		seen := make(map[string]struct{}, len(accountIDs))
		for _, accountID := range accountIDs {
			if _, ok := seen[accountID]; ok {
				continue
			}
			seen[accountID] = struct{}{}

			outcome, err := s.Refresh(ctx, tenantID, accountID, period.Year, int(period.Month))
			if err != nil {
				return err
			}
			if outcome == nil || outcome.Crossed == domain.AlertNone {
				continue
			}
			row := outcome.Row
			pending.Items = append(pending.Items, domain.BudgetAlertItem{
				AccountID:          row.AccountID,
				AccountCode:        row.AccountCode,
				AccountName:        row.AccountName,
				Level:              outcome.Crossed,
				BudgetedAmount:     row.BudgetedAmount,
				ActualAmount:       row.ActualAmount,
				VariancePercentage: row.VariancePercentage,
			})
		}
		if len(pending.Items) == 0 {
			return nil
		}
		if err := s.events.Publish(ctx, tenantID, domain.EventBudgetThresholdCrossed, pending); err != nil {
			return err
		}
		alert = pending
		return nil
	})
	if err != nil {
		return nil, err
	}
	if alert != nil {
		s.LogInfo(ctx, "Budget thresholds crossed",
			slog.String("tenant_id", tenantID), slog.String("period", period.String()), slog.Int("accounts", len(alert.Items)))
	}
	return alert, nil
}

// ActivateBudget implements portssvc.BudgetPlannerSvc.
func (s *budgetService) ActivateBudget(ctx context.Context, tenantID string, year int, lines []domain.BudgetLine) error {
	if _, err := domain.NewPeriod(year, 1); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	for _, line := range lines {
		if err := s.validate.Struct(line); err != nil {
			return fmt.Errorf("%w: budget line %s: %v", apperrors.ErrValidation, line.AccountCode, err)
		}
		if line.BudgetedAmount.IsNegative() {
			return fmt.Errorf("%w: budget line %s has a negative amount", apperrors.ErrValidation, line.AccountCode)
		}
	}

	return s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, line := range lines {
			account, err := s.accounts.ResolvePostable(ctx, tenantID, line.AccountCode)
			if err != nil {
				return err
			}
			row := domain.BudgetExecution{
				TenantID:           tenantID,
				AccountID:          account.AccountID,
				AccountCode:        account.Code,
				AccountName:        account.Name,
				Year:               year,
				Month:              line.Month,
				BudgetedAmount:     domain.RoundMoney(line.BudgetedAmount),
				ActualAmount:       decimal.Zero,
				VarianceAmount:     decimal.Zero,
				VariancePercentage: decimal.Zero,
				AlertLevel:         domain.AlertNone,
			}
			if err := s.repo.UpsertBudgeted(ctx, row); err != nil {
				return err
			}
			// Activation records the starting level without alerting; only later increases notify.
			if _, err := s.Refresh(ctx, tenantID, account.AccountID, year, line.Month); err != nil {
				return err
			}
		}
		s.LogInfo(ctx, "Budget activated", slog.String("tenant_id", tenantID), slog.Int("year", year), slog.Int("lines", len(lines)))
		return nil
	})
}

// ListExecution implements portssvc.BudgetPlannerSvc.
func (s *budgetService) ListExecution(ctx context.Context, tenantID string, year, month int) ([]domain.BudgetExecution, error) {
	if _, err := domain.NewPeriod(year, month); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
	}
	rows, err := s.repo.ListExecution(ctx, tenantID, year, month)
	if err != nil {
		s.LogError(ctx, err, "Failed to list budget execution", slog.String("tenant_id", tenantID))
		return nil, err
	}
	if rows == nil {
		return []domain.BudgetExecution{}, nil
	}
	return rows, nil
}
