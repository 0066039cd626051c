package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
)

// mappingResolver resolves accounts from tenant mappings first and the static table second.
// It never invents an account: unknown payment methods are an error.
type mappingResolver struct {
	BaseService
	repo     portsrepo.MappingReader
	accounts portssvc.AccountTreeSvc
	defaults *DefaultMappings
}

// NewMappingResolver creates the account-mapping resolver.
func NewMappingResolver(repo portsrepo.MappingReader, accounts portssvc.AccountTreeSvc, defaults *DefaultMappings) portssvc.MappingResolverSvc {
	return &mappingResolver{repo: repo, accounts: accounts, defaults: defaults}
}

var _ portssvc.MappingResolverSvc = (*mappingResolver)(nil)

func (r *mappingResolver) resolvePair(ctx context.Context, tenantID string, codes ConceptCodes, source string) (*domain.ConceptAccounts, error) {
	receivable, err := r.accounts.ResolvePostable(ctx, tenantID, codes.Receivable)
	if err != nil {
		return nil, fmt.Errorf("%w: receivable account: %w", apperrors.ErrMissingAccountMapping, err)
	}
	income, err := r.accounts.ResolvePostable(ctx, tenantID, codes.Income)
	if err != nil {
		return nil, fmt.Errorf("%w: income account: %w", apperrors.ErrMissingAccountMapping, err)
	}
	return &domain.ConceptAccounts{Receivable: *receivable, Income: *income, Source: source}, nil
}

// ResolveForConcept implements portssvc.MappingResolverSvc.
func (r *mappingResolver) ResolveForConcept(ctx context.Context, tenantID, conceptID string, conceptType domain.ConceptType) (*domain.ConceptAccounts, error) {
	logger := r.GetLogger(ctx).With(slog.String("tenant_id", tenantID), slog.String("concept_id", conceptID), slog.String("concept_type", string(conceptType)))

	if conceptID != "" {
		m, err := r.repo.FindActiveMapping(ctx, tenantID, domain.MappingConcept, conceptID)
		switch {
		case err == nil && m.ReceivableCode != "" && m.IncomeCode != "":
			return r.resolvePair(ctx, tenantID, ConceptCodes{Receivable: m.ReceivableCode, Income: m.IncomeCode}, domain.MappingSourceTenant)
		case err == nil:
			logger.Warn("Concept mapping is incomplete, using defaults", slog.String("mapping_id", m.MappingID))
		case errors.Is(err, apperrors.ErrNotFound):
		default:
			logger.Error("Failed to read concept mapping", slog.String("error", err.Error()))
			return nil, err
		}
	}

	codes, ok := r.defaults.ForConcept(conceptType)
	if !ok {
		logger.Debug("No mapping for concept")
		return nil, nil
	}
	return r.resolvePair(ctx, tenantID, codes, domain.MappingSourceDefault)
}

// ResolveCashAccount implements portssvc.MappingResolverSvc.
func (r *mappingResolver) ResolveCashAccount(ctx context.Context, tenantID, paymentMethod string) (*domain.Account, error) {
	method := strings.ToLower(strings.TrimSpace(paymentMethod))
	if method == "" {
		return nil, fmt.Errorf("%w: payment method is empty", apperrors.ErrMissingAccountMapping)
	}
	m, err := r.repo.FindActiveMapping(ctx, tenantID, domain.MappingPaymentMethod, method)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no cash account for payment method %q", apperrors.ErrMissingAccountMapping, method)
		}
		r.LogError(ctx, err, "Failed to read payment method mapping", slog.String("payment_method", method))
		return nil, err
	}
	if m.CashCode == "" {
		return nil, fmt.Errorf("%w: mapping for payment method %q has no cash account", apperrors.ErrMissingAccountMapping, method)
	}
	account, err := r.accounts.ResolvePostable(ctx, tenantID, m.CashCode)
	if err != nil {
		return nil, fmt.Errorf("%w: payment method %q: %w", apperrors.ErrMissingAccountMapping, method, err)
	}
	return account, nil
}
