package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/dto"
)

// HandleInvoiceCreated posts one receivable/income transaction per concept group of the invoice.
func (s *generatorService) HandleInvoiceCreated(ctx context.Context, evt domain.InvoiceCreated) (*domain.GenerationResult, error) {
	ref := domain.Reference{Type: domain.ReferenceInvoice, ID: evt.InvoiceID}

	return s.generate(ctx, evt.TenantID, ref, "", func(ctx context.Context) ([]*domain.Transaction, error) {
		invoice, err := s.loadInvoice(ctx, evt.TenantID, evt.InvoiceID)
		if err != nil {
			return nil, err
		}

		txns := make([]*domain.Transaction, 0)
		for _, g := range conceptGroups(invoice) {
			if !g.Total.IsPositive() {
				s.GetLogger(ctx).Warn("Skipping concept group without a positive total",
					slog.String("invoice_id", invoice.InvoiceID), slog.String("concept", g.Key()), slog.String("total", g.Total.String()))
				continue
			}
			accounts, err := s.resolveConcept(ctx, evt.TenantID, g)
			if err != nil {
				return nil, err
			}
			description := fmt.Sprintf("Invoice %s - %s", invoice.Number, g.Type)
			txn, err := s.ledger.RecordBalanced(ctx, dto.CreateTransactionRequest{
				TenantID:    evt.TenantID,
				Date:        invoice.IssueDate,
				Description: description,
				Reference:   ref,
				Metadata:    map[string]string{"concept": g.Key(), "mapping_source": accounts.Source},
				PostingKey:  postingKey(ref, g.Key()),
				CreatedBy:   SystemActor,
			}, []dto.AddEntryRequest{
				{AccountCode: accounts.Receivable.Code, DebitAmount: g.Total, Description: description, ThirdParty: apartmentOf(invoice)},
				{AccountCode: accounts.Income.Code, CreditAmount: g.Total, Description: description},
			})
			if err != nil {
				return nil, err
			}
			txns = append(txns, txn)
		}
		return txns, nil
	})
}
