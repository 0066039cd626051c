package services

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// GeneratorSvc derives ledger postings from billing events. Every method is idempotent:
// replaying an event that was already posted returns a result with Duplicate set.
// Returned errors carry an apperrors.Kind that the delivery layer uses for its retry policy.
type GeneratorSvc interface {
	HandleInvoiceCreated(ctx context.Context, evt domain.InvoiceCreated) (*domain.GenerationResult, error)
	HandlePaymentReceived(ctx context.Context, evt domain.PaymentReceived) (*domain.GenerationResult, error)
	HandleLateFeeApplied(ctx context.Context, evt domain.LateFeeApplied) (*domain.GenerationResult, error)
}
