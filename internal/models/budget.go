package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// BudgetExecution is a row of the budget_execution table.
type BudgetExecution struct {
	TenantID           string          `db:"tenant_id"`
	AccountID          string          `db:"account_id"`
	Year               int             `db:"year"`
	Month              int             `db:"month"`
	AccountCode        string          `db:"account_code"`
	AccountName        string          `db:"account_name"`
	BudgetedAmount     decimal.Decimal `db:"budgeted_amount"`
	ActualAmount       decimal.Decimal `db:"actual_amount"`
	VarianceAmount     decimal.Decimal `db:"variance_amount"`
	VariancePercentage decimal.Decimal `db:"variance_percentage"`
	AlertLevel         string          `db:"alert_level"`
	RefreshedAt        *time.Time      `db:"refreshed_at"`
}
