package mapping

import (
	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/models"
)

// ToModelTransaction converts a domain Transaction header to a model Transaction
func ToModelTransaction(d domain.Transaction) models.Transaction {
	metadata := d.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	return models.Transaction{
		TransactionID:   d.TransactionID,
		TenantID:        d.TenantID,
		TransactionDate: d.Date,
		Description:     d.Description,
		ReferenceType:   string(d.Reference.Type),
		ReferenceID:     d.Reference.ID,
		Status:          string(d.Status),
		TotalDebit:      d.TotalDebit,
		TotalCredit:     d.TotalCredit,
		Metadata:        metadata,
		PostingKey:      d.PostingKey,
		PostedAt:        d.PostedAt,
		CancelledAt:     d.CancelledAt,
		CancelReason:    d.CancelReason,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransaction converts a model Transaction and its entries to a domain Transaction
func ToDomainTransaction(m models.Transaction, entries []models.Entry) domain.Transaction {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		metadata = m.Metadata
	}
	return domain.Transaction{
		TransactionID: m.TransactionID,
		TenantID:      m.TenantID,
		Date:          m.TransactionDate,
		Description:   m.Description,
		Reference:     domain.Reference{Type: domain.ReferenceType(m.ReferenceType), ID: m.ReferenceID},
		Status:        domain.TransactionStatus(m.Status),
		TotalDebit:    m.TotalDebit,
		TotalCredit:   m.TotalCredit,
		Metadata:      metadata,
		PostingKey:    m.PostingKey,
		PostedAt:      m.PostedAt,
		CancelledAt:   m.CancelledAt,
		CancelReason:  m.CancelReason,
		Entries:       ToDomainEntrySlice(entries),
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelEntry converts a domain Entry to a model Entry
func ToModelEntry(tenantID string, d domain.Entry) models.Entry {
	m := models.Entry{
		EntryID:       d.EntryID,
		TransactionID: d.TransactionID,
		TenantID:      tenantID,
		AccountID:     d.AccountID,
		AccountCode:   d.AccountCode,
		DebitAmount:   d.DebitAmount,
		CreditAmount:  d.CreditAmount,
		Description:   d.Description,
		CreatedAt:     d.CreatedAt,
	}
	if d.ThirdParty != nil {
		m.ThirdPartyType = NullableString(d.ThirdParty.Type)
		m.ThirdPartyID = NullableString(d.ThirdParty.ID)
	}
	return m
}

// ToDomainEntry converts a model Entry to a domain Entry
func ToDomainEntry(m models.Entry) domain.Entry {
	d := domain.Entry{
		EntryID:       m.EntryID,
		TransactionID: m.TransactionID,
		AccountID:     m.AccountID,
		AccountCode:   m.AccountCode,
		DebitAmount:   m.DebitAmount,
		CreditAmount:  m.CreditAmount,
		Description:   m.Description,
		CreatedAt:     m.CreatedAt,
	}
	if m.ThirdPartyType != nil || m.ThirdPartyID != nil {
		d.ThirdParty = &domain.ThirdParty{Type: StringValue(m.ThirdPartyType), ID: StringValue(m.ThirdPartyID)}
	}
	return d
}

// ToDomainEntrySlice converts a slice of model Entries to a slice of domain Entries
func ToDomainEntrySlice(ms []models.Entry) []domain.Entry {
	if len(ms) == 0 {
		return nil
	}
	ds := make([]domain.Entry, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainEntry(m)
	}
	return ds
}
