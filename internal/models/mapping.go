package models

// AccountMapping is a row of the account_mappings table.
type AccountMapping struct {
	MappingID      string  `db:"mapping_id"`
	TenantID       string  `db:"tenant_id"`
	Kind           string  `db:"kind"`
	Key            string  `db:"key"`
	ReceivableCode *string `db:"receivable_code"`
	IncomeCode     *string `db:"income_code"`
	CashCode       *string `db:"cash_code"`
	IsActive       bool    `db:"is_active"`
	AuditFields
}
