package models

// Account is a row of the accounts table.
type Account struct {
	AccountID      string  `db:"account_id"`
	TenantID       string  `db:"tenant_id"`
	Code           string  `db:"code"`
	Name           string  `db:"name"`
	AccountType    string  `db:"account_type"`
	ParentCode     *string `db:"parent_code"` // NULL for top-level classes
	Level          int     `db:"level"`
	NormalBalance  string  `db:"normal_balance"`
	AcceptsPosting bool    `db:"accepts_posting"`
	IsActive       bool    `db:"is_active"`
	AuditFields
}
