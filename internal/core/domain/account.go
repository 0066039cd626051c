package domain

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// NormalBalance is the side on which an account's balance increases.
type NormalBalance string

const (
	DebitNormal  NormalBalance = "DEBIT"
	CreditNormal NormalBalance = "CREDIT"
)

// DefaultNormalBalance returns the conventional normal side for an account type.
func DefaultNormalBalance(t AccountType) NormalBalance {
	switch t {
	case Asset, Expense:
		return DebitNormal
	default:
		return CreditNormal
	}
}

// Account is a node of a tenant's chart of accounts.
// ParentCode is a weak reference owned by the tree, empty for top-level classes.
type Account struct {
	AccountID      string        `json:"accountID"`
	TenantID       string        `json:"tenantID"`
	Code           string        `json:"code"` // hierarchical, e.g. "130505"
	Name           string        `json:"name"`
	AccountType    AccountType   `json:"accountType"`
	ParentCode     string        `json:"parentCode,omitempty"`
	Level          int           `json:"level"`
	NormalBalance  NormalBalance `json:"normalBalance"`
	AcceptsPosting bool          `json:"acceptsPosting"` // only leaf/detail accounts
	IsActive       bool          `json:"isActive"`
	AuditFields
}

// IsPostable reports whether entries may be recorded against the account.
func (a Account) IsPostable() bool {
	return a.AcceptsPosting && a.IsActive
}
