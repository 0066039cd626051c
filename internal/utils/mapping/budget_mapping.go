package mapping

import (
	"time"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/models"
)

// ToModelBudgetExecution converts a domain BudgetExecution to a model BudgetExecution
func ToModelBudgetExecution(d domain.BudgetExecution) models.BudgetExecution {
	m := models.BudgetExecution{
		TenantID:           d.TenantID,
		AccountID:          d.AccountID,
		Year:               d.Year,
		Month:              d.Month,
		AccountCode:        d.AccountCode,
		AccountName:        d.AccountName,
		BudgetedAmount:     d.BudgetedAmount,
		ActualAmount:       d.ActualAmount,
		VarianceAmount:     d.VarianceAmount,
		VariancePercentage: d.VariancePercentage,
		AlertLevel:         string(d.AlertLevel),
	}
	if m.AlertLevel == "" {
		m.AlertLevel = string(domain.AlertNone)
	}
	if !d.RefreshedAt.IsZero() {
		refreshed := d.RefreshedAt
		m.RefreshedAt = &refreshed
	}
	return m
}

// ToDomainBudgetExecution converts a model BudgetExecution to a domain BudgetExecution
func ToDomainBudgetExecution(m models.BudgetExecution) domain.BudgetExecution {
	var refreshed time.Time
	if m.RefreshedAt != nil {
		refreshed = *m.RefreshedAt
	}
	return domain.BudgetExecution{
		TenantID:           m.TenantID,
		AccountID:          m.AccountID,
		AccountCode:        m.AccountCode,
		AccountName:        m.AccountName,
		Year:               m.Year,
		Month:              m.Month,
		BudgetedAmount:     m.BudgetedAmount,
		ActualAmount:       m.ActualAmount,
		VarianceAmount:     m.VarianceAmount,
		VariancePercentage: m.VariancePercentage,
		AlertLevel:         domain.AlertLevel(m.AlertLevel),
		RefreshedAt:        refreshed,
	}
}
