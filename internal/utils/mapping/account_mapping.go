package mapping

import (
	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:      d.AccountID,
		TenantID:       d.TenantID,
		Code:           d.Code,
		Name:           d.Name,
		AccountType:    string(d.AccountType),
		ParentCode:     NullableString(d.ParentCode),
		Level:          d.Level,
		NormalBalance:  string(d.NormalBalance),
		AcceptsPosting: d.AcceptsPosting,
		IsActive:       d.IsActive,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:      m.AccountID,
		TenantID:       m.TenantID,
		Code:           m.Code,
		Name:           m.Name,
		AccountType:    domain.AccountType(m.AccountType),
		ParentCode:     StringValue(m.ParentCode),
		Level:          m.Level,
		NormalBalance:  domain.NormalBalance(m.NormalBalance),
		AcceptsPosting: m.AcceptsPosting,
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}
