package services

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// MappingResolverSvc translates business concepts into accounts.
type MappingResolverSvc interface {
	// ResolveForConcept returns the receivable/income pair for a concept, falling back to the
	// static table for conceptType. It returns nil, nil when neither knows the concept.
	ResolveForConcept(ctx context.Context, tenantID, conceptID string, conceptType domain.ConceptType) (*domain.ConceptAccounts, error)

	// ResolveCashAccount returns the cash/bank account for a payment method or ErrMissingAccountMapping.
	ResolveCashAccount(ctx context.Context, tenantID, paymentMethod string) (*domain.Account, error)
}
