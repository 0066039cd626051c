package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Invoice is a row of the billing module's invoices table.
type Invoice struct {
	InvoiceID   string          `db:"invoice_id"`
	TenantID    string          `db:"tenant_id"`
	Number      string          `db:"number"`
	ApartmentID string          `db:"apartment_id"`
	IssueDate   time.Time       `db:"issue_date"`
	DueDate     time.Time       `db:"due_date"`
	Total       decimal.Decimal `db:"total"`
}

// InvoiceItem is a row of invoice_items.
type InvoiceItem struct {
	ItemID      string          `db:"item_id"`
	InvoiceID   string          `db:"invoice_id"`
	ConceptID   *string         `db:"concept_id"`
	ConceptType *string         `db:"concept_type"`
	Description string          `db:"description"`
	Amount      decimal.Decimal `db:"amount"`
}
