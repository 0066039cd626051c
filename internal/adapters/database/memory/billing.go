package memory

import (
	"context"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

var _ portsrepo.BillingReader = (*Store)(nil)

// PutInvoice stores or replaces an invoice.
func (s *Store) PutInvoice(invoice domain.Invoice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	invoice.Items = append([]domain.InvoiceItem(nil), invoice.Items...)
	s.invoices[tenantKey(invoice.TenantID, invoice.InvoiceID)] = invoice
}

// FindInvoiceByID implements portsrepo.BillingReader.
func (s *Store) FindInvoiceByID(_ context.Context, tenantID, invoiceID string) (*domain.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	invoice, ok := s.invoices[tenantKey(tenantID, invoiceID)]
	if !ok {
		return nil, apperrors.NewNotFoundError("invoice " + invoiceID + " not found")
	}
	invoice.Items = append([]domain.InvoiceItem(nil), invoice.Items...)
	return &invoice, nil
}
