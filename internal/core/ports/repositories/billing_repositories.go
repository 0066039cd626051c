package repositories

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// BillingReader loads the business records behind billing events. The records are owned by
// the invoicing module.
type BillingReader interface {
	// FindInvoiceByID returns an invoice with its items, or ErrNotFound.
	FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error)
}
