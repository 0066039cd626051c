package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// EventName identifies a domain event on the queue.
type EventName string

const (
	EventInvoiceCreated         EventName = "InvoiceCreated"
	EventPaymentReceived        EventName = "PaymentReceived"
	EventLateFeeApplied         EventName = "LateFeeApplied"
	EventTransactionPosted      EventName = "TransactionPosted"
	EventTransactionCancelled   EventName = "TransactionCancelled"
	EventBudgetThresholdCrossed EventName = "BudgetThresholdCrossed"
)

// InvoiceCreated is published by the invoicing module once an invoice is issued.
type InvoiceCreated struct {
	TenantID  string `json:"tenantID"`
	InvoiceID string `json:"invoiceID"`
}

// PaymentReceived carries the payment record it refers to.
type PaymentReceived struct {
	TenantID string  `json:"tenantID"`
	Payment  Payment `json:"payment"`
}

// LateFeeApplied carries the computed interest for one invoice and month.
type LateFeeApplied struct {
	TenantID  string          `json:"tenantID"`
	InvoiceID string          `json:"invoiceID"`
	Period    string          `json:"period"` // YYYY-MM
	Amount    decimal.Decimal `json:"amount"`
	AppliedAt time.Time       `json:"appliedAt"`
}

// TransactionPosted is emitted when a transaction becomes visible to balances and budgets.
type TransactionPosted struct {
	TenantID      string    `json:"tenantID"`
	TransactionID string    `json:"transactionID"`
	Date          time.Time `json:"date"`
	AccountIDs    []string  `json:"accountIDs"`
	Reference     Reference `json:"reference"`
}

// TransactionCancelled is emitted when a posted transaction is cancelled.
type TransactionCancelled struct {
	TenantID      string    `json:"tenantID"`
	TransactionID string    `json:"transactionID"`
	Date          time.Time `json:"date"`
	AccountIDs    []string  `json:"accountIDs"`
}
