package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a row of the transactions table. Entries are loaded separately.
type Transaction struct {
	TransactionID   string            `db:"transaction_id"`
	TenantID        string            `db:"tenant_id"`
	TransactionDate time.Time         `db:"transaction_date"`
	Description     string            `db:"description"`
	ReferenceType   string            `db:"reference_type"`
	ReferenceID     string            `db:"reference_id"`
	Status          string            `db:"status"`
	TotalDebit      decimal.Decimal   `db:"total_debit"`
	TotalCredit     decimal.Decimal   `db:"total_credit"`
	Metadata        map[string]string `db:"metadata"` // JSONB
	PostingKey      string            `db:"posting_key"`
	PostedAt        *time.Time        `db:"posted_at"`
	CancelledAt     *time.Time        `db:"cancelled_at"`
	CancelReason    string            `db:"cancel_reason"`
	AuditFields
}

// Entry is a row of the entries table.
type Entry struct {
	EntryID        string          `db:"entry_id"`
	TransactionID  string          `db:"transaction_id"`
	TenantID       string          `db:"tenant_id"`
	AccountID      string          `db:"account_id"`
	AccountCode    string          `db:"account_code"`
	DebitAmount    decimal.Decimal `db:"debit_amount"`
	CreditAmount   decimal.Decimal `db:"credit_amount"`
	Description    string          `db:"description"`
	ThirdPartyType *string         `db:"third_party_type"`
	ThirdPartyID   *string         `db:"third_party_id"`
	CreatedAt      time.Time       `db:"created_at"`

	// TransactionDate is joined in by account listings for cursor pagination.
	TransactionDate time.Time `db:"transaction_date"`
}
