package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/dto"
	"github.com/propledger/ledgercore/internal/utils/accounting"
)

// HandlePaymentReceived spreads the payment over the invoice's concept groups in proportion to
// their totals and posts cash against each receivable.
func (s *generatorService) HandlePaymentReceived(ctx context.Context, evt domain.PaymentReceived) (*domain.GenerationResult, error) {
	payment := evt.Payment
	ref := domain.Reference{Type: domain.ReferencePayment, ID: payment.PaymentID}
	if payment.PaymentID == "" {
		return nil, apperrors.Fatal(fmt.Errorf("%w: event carries no payment ID", apperrors.ErrValidation))
	}
	if !payment.Amount.IsPositive() {
		return nil, apperrors.Fatal(fmt.Errorf("%w: payment %s amount %s must be positive", apperrors.ErrInvalidAmount, payment.PaymentID, payment.Amount))
	}

	return s.generate(ctx, evt.TenantID, ref, "", func(ctx context.Context) ([]*domain.Transaction, error) {
		cash, err := s.mappings.ResolveCashAccount(ctx, evt.TenantID, payment.Method)
		if err != nil {
			return nil, err
		}
		invoice, err := s.loadInvoice(ctx, evt.TenantID, payment.InvoiceID)
		if err != nil {
			return nil, err
		}

		groups := conceptGroups(invoice)
		weights := make([]decimal.Decimal, len(groups))
		for i, g := range groups {
			weights[i] = g.Total
		}
		shares, err := accounting.Allocate(payment.Amount, weights)
		if err != nil {
			return nil, apperrors.Fatal(fmt.Errorf("%w: payment %s against invoice %s: %w", apperrors.ErrInvalidAmount, payment.PaymentID, invoice.InvoiceID, err))
		}

		txns := make([]*domain.Transaction, 0, len(groups))
		for i, g := range groups {
			if !shares[i].IsPositive() {
				continue
			}
			accounts, err := s.resolveConcept(ctx, evt.TenantID, g)
			if err != nil {
				return nil, err
			}
			description := fmt.Sprintf("Payment %s on invoice %s - %s", payment.PaymentID, invoice.Number, g.Type)
			txn, err := s.ledger.RecordBalanced(ctx, dto.CreateTransactionRequest{
				TenantID:    evt.TenantID,
				Date:        payment.ReceivedAt,
				Description: description,
				Reference:   ref,
				Metadata: map[string]string{
					"concept":        g.Key(),
					"invoice_id":     invoice.InvoiceID,
					"payment_method": payment.Method,
				},
				PostingKey: postingKey(ref, g.Key()),
				CreatedBy:  SystemActor,
			}, []dto.AddEntryRequest{
				{AccountCode: cash.Code, DebitAmount: shares[i], Description: description},
				{AccountCode: accounts.Receivable.Code, CreditAmount: shares[i], Description: description, ThirdParty: apartmentOf(invoice)},
			})
			if err != nil {
				return nil, err
			}
			txns = append(txns, txn)
		}
		return txns, nil
	})
}
