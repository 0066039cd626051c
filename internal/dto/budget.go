package dto

import (
	"github.com/propledger/ledgercore/internal/core/domain"
)

// BudgetExecutionQuery selects the period of budget execution rows.
type BudgetExecutionQuery struct {
	Year  int `form:"year" binding:"required,min=1900,max=9999"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// BudgetExecutionResponse lists the execution rows of a period.
type BudgetExecutionResponse struct {
	Year  int                      `json:"year"`
	Month int                      `json:"month"`
	Rows  []domain.BudgetExecution `json:"rows"`
}
