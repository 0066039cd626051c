package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AlertLevel is the severity reached by a budget execution row.
type AlertLevel string

const (
	AlertNone    AlertLevel = "NONE"
	AlertWarning AlertLevel = "WARNING"
	AlertDanger  AlertLevel = "DANGER"
)

// Rank orders levels so crossings can be detected.
func (l AlertLevel) Rank() int {
	switch l {
	case AlertWarning:
		return 1
	case AlertDanger:
		return 2
	default:
		return 0
	}
}

// BudgetLine is an approved budgeted amount for one account and month.
type BudgetLine struct {
	AccountCode    string          `json:"accountCode" validate:"required"`
	Month          int             `json:"month" validate:"min=1,max=12"`
	BudgetedAmount decimal.Decimal `json:"budgetedAmount"`
}

// BudgetExecution compares actual postings to the budget for (account, month, year).
// ActualAmount is derived and only written by the aggregator.
type BudgetExecution struct {
	TenantID           string          `json:"tenantID"`
	AccountID          string          `json:"accountID"`
	AccountCode        string          `json:"accountCode"`
	AccountName        string          `json:"accountName"`
	Year               int             `json:"year"`
	Month              int             `json:"month"`
	BudgetedAmount     decimal.Decimal `json:"budgetedAmount"`
	ActualAmount       decimal.Decimal `json:"actualAmount"`
	VarianceAmount     decimal.Decimal `json:"varianceAmount"`
	VariancePercentage decimal.Decimal `json:"variancePercentage"`
	AlertLevel         AlertLevel      `json:"alertLevel"`
	RefreshedAt        time.Time       `json:"refreshedAt"`
}

// Period returns the row's period.
func (b BudgetExecution) Period() Period {
	return Period{Year: b.Year, Month: time.Month(b.Month)}
}

var hundred = decimal.NewFromInt(100)

// MaxVariancePercentage is the largest magnitude the variance_percentage column holds.
var MaxVariancePercentage = decimal.RequireFromString("9999999999999999.99")

// ApplyActual sets the actual amount and recomputes the variance columns.
// A zero budget with a non-zero actual counts as a 100% variance.
func (b *BudgetExecution) ApplyActual(actual decimal.Decimal) {
	b.ActualAmount = actual
	b.VarianceAmount = actual.Sub(b.BudgetedAmount)
	switch {
	case !b.BudgetedAmount.IsZero():
		pct := b.VarianceAmount.Mul(hundred).DivRound(b.BudgetedAmount.Abs(), 4).Round(2)
		b.VariancePercentage = decimal.Min(decimal.Max(pct, MaxVariancePercentage.Neg()), MaxVariancePercentage)
	case actual.IsZero():
		b.VariancePercentage = decimal.Zero
	case actual.IsPositive():
		b.VariancePercentage = hundred
	default:
		b.VariancePercentage = hundred.Neg()
	}
}

// AlertThresholds are absolute variance percentages.
type AlertThresholds struct {
	Warning decimal.Decimal
	Danger  decimal.Decimal
}

// LevelFor returns the level reached by an absolute variance percentage.
func (t AlertThresholds) LevelFor(variancePct decimal.Decimal) AlertLevel {
	abs := variancePct.Abs()
	switch {
	case !t.Danger.IsZero() && abs.GreaterThanOrEqual(t.Danger):
		return AlertDanger
	case !t.Warning.IsZero() && abs.GreaterThanOrEqual(t.Warning):
		return AlertWarning
	default:
		return AlertNone
	}
}

// BudgetAlertItem is one account that crossed a threshold.
type BudgetAlertItem struct {
	AccountID          string          `json:"accountID"`
	AccountCode        string          `json:"accountCode"`
	AccountName        string          `json:"accountName"`
	Level              AlertLevel      `json:"level"`
	BudgetedAmount     decimal.Decimal `json:"budgetedAmount"`
	ActualAmount       decimal.Decimal `json:"actualAmount"`
	VariancePercentage decimal.Decimal `json:"variancePercentage"`
}

// BudgetAlert batches every crossing of one tenant and period into a single notification.
type BudgetAlert struct {
	TenantID string            `json:"tenantID"`
	Year     int               `json:"year"`
	Month    int               `json:"month"`
	Items    []BudgetAlertItem `json:"items"`
}
