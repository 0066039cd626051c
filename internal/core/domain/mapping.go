package domain

// MappingKind distinguishes what a mapping row translates.
type MappingKind string

const (
	MappingConcept       MappingKind = "CONCEPT"
	MappingPaymentMethod MappingKind = "PAYMENT_METHOD"
)

// AccountMapping associates a business concept or payment method with the accounts to post against.
// Rows are written by configuration screens; the ledger only reads them.
type AccountMapping struct {
	MappingID      string      `json:"mappingID"`
	TenantID       string      `json:"tenantID"`
	Kind           MappingKind `json:"kind"`
	Key            string      `json:"key"` // concept ID or payment method
	ReceivableCode string      `json:"receivableCode,omitempty"`
	IncomeCode     string      `json:"incomeCode,omitempty"`
	CashCode       string      `json:"cashCode,omitempty"`
	IsActive       bool        `json:"isActive"`
	AuditFields
}

// ConceptAccounts is the resolved receivable/income pair for a concept.
type ConceptAccounts struct {
	Receivable Account `json:"receivable"`
	Income     Account `json:"income"`
	// Source tells whether the pair came from a tenant mapping or the static defaults.
	Source string `json:"source"`
}

const (
	MappingSourceTenant  = "tenant"
	MappingSourceDefault = "default"
)
