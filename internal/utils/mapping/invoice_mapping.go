package mapping

import (
	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/models"
)

// ToDomainInvoice converts an invoice row and its items to a domain Invoice
func ToDomainInvoice(m models.Invoice, items []models.InvoiceItem) domain.Invoice {
	d := domain.Invoice{
		InvoiceID:   m.InvoiceID,
		TenantID:    m.TenantID,
		Number:      m.Number,
		ApartmentID: m.ApartmentID,
		IssueDate:   m.IssueDate,
		DueDate:     m.DueDate,
		Total:       m.Total,
		Items:       make([]domain.InvoiceItem, len(items)),
	}
	for i, item := range items {
		d.Items[i] = domain.InvoiceItem{
			ItemID:      item.ItemID,
			ConceptID:   StringValue(item.ConceptID),
			ConceptType: domain.ConceptType(StringValue(item.ConceptType)),
			Description: item.Description,
			Amount:      item.Amount,
		}
	}
	return d
}
