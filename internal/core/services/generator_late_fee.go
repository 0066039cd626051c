package services

import (
	"context"
	"fmt"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/dto"
)

// HandleLateFeeApplied posts the late-fee receivable and income for one invoice and month.
func (s *generatorService) HandleLateFeeApplied(ctx context.Context, evt domain.LateFeeApplied) (*domain.GenerationResult, error) {
	period, err := domain.ParsePeriod(evt.Period)
	if err != nil {
		return nil, apperrors.Fatal(fmt.Errorf("%w: %w", apperrors.ErrValidation, err))
	}
	if !evt.Amount.IsPositive() {
		return nil, apperrors.Fatal(fmt.Errorf("%w: late fee %s must be positive", apperrors.ErrInvalidAmount, evt.Amount))
	}
	ref := domain.Reference{Type: domain.ReferenceLateFee, ID: evt.InvoiceID}
	periodKey := period.String()

	return s.generate(ctx, evt.TenantID, ref, periodKey, func(ctx context.Context) ([]*domain.Transaction, error) {
		invoice, err := s.loadInvoice(ctx, evt.TenantID, evt.InvoiceID)
		if err != nil {
			return nil, err
		}
		accounts, err := s.resolveConcept(ctx, evt.TenantID, domain.ConceptGroup{Type: domain.ConceptLateFee})
		if err != nil {
			return nil, err
		}

		date := evt.AppliedAt
		if date.IsZero() {
			date = period.End().AddDate(0, 0, -1)
		}
		description := fmt.Sprintf("Late fee %s on invoice %s", periodKey, invoice.Number)
		txn, err := s.ledger.RecordBalanced(ctx, dto.CreateTransactionRequest{
			TenantID:    evt.TenantID,
			Date:        date,
			Description: description,
			Reference:   ref,
			Metadata:    map[string]string{domain.MetadataPeriodKey: periodKey},
			PostingKey:  postingKey(ref, periodKey),
			CreatedBy:   SystemActor,
		}, []dto.AddEntryRequest{
			{AccountCode: accounts.Receivable.Code, DebitAmount: evt.Amount, Description: description, ThirdParty: apartmentOf(invoice)},
			{AccountCode: accounts.Income.Code, CreditAmount: evt.Amount, Description: description},
		})
		if err != nil {
			return nil, err
		}
		return []*domain.Transaction{txn}, nil
	})
}
