package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	"github.com/propledger/ledgercore/internal/models"
	"github.com/propledger/ledgercore/internal/utils/mapping"
)

// PgxBillingRepository reads the billing module's invoice tables.
type PgxBillingRepository struct {
	BaseRepository
}

func newPgxBillingRepository(pool *pgxpool.Pool) *PgxBillingRepository {
	return &PgxBillingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BillingReader = (*PgxBillingRepository)(nil)

// FindInvoiceByID loads an invoice and its items in line order.
func (r *PgxBillingRepository) FindInvoiceByID(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error) {
	var inv models.Invoice
	err := r.db(ctx).QueryRow(ctx, `
		SELECT invoice_id, tenant_id, number, apartment_id, issue_date, due_date, total
		FROM invoices
		WHERE tenant_id = $1 AND invoice_id = $2;`, tenantID, invoiceID).Scan(
		&inv.InvoiceID,
		&inv.TenantID,
		&inv.Number,
		&inv.ApartmentID,
		&inv.IssueDate,
		&inv.DueDate,
		&inv.Total,
	)
	if err != nil {
		return nil, lookupError(err, "invoice "+invoiceID)
	}

	rows, err := r.db(ctx).Query(ctx, `
		SELECT item_id, invoice_id, concept_id, concept_type, description, amount
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY position, item_id;`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query items of invoice %s: %w", invoiceID, err)
	}
	defer rows.Close()

	items := make([]models.InvoiceItem, 0)
	for rows.Next() {
		var item models.InvoiceItem
		if err := rows.Scan(&item.ItemID, &item.InvoiceID, &item.ConceptID, &item.ConceptType, &item.Description, &item.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan item of invoice %s: %w", invoiceID, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items of invoice %s: %w", invoiceID, err)
	}

	invoice := mapping.ToDomainInvoice(inv, items)
	return &invoice, nil
}
