package mapping

import (
	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/models"
)

// ToDomainAccountMapping converts a model AccountMapping to a domain AccountMapping
func ToDomainAccountMapping(m models.AccountMapping) domain.AccountMapping {
	return domain.AccountMapping{
		MappingID:      m.MappingID,
		TenantID:       m.TenantID,
		Kind:           domain.MappingKind(m.Kind),
		Key:            m.Key,
		ReceivableCode: StringValue(m.ReceivableCode),
		IncomeCode:     StringValue(m.IncomeCode),
		CashCode:       StringValue(m.CashCode),
		IsActive:       m.IsActive,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}
