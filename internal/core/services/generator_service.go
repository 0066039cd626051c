package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
)

// SystemActor is recorded as creator of generated transactions.
const SystemActor = "system:generator"

const thirdPartyApartment = "apartment"

// generatorService turns billing events into posted transactions.
type generatorService struct {
	BaseService
	txm      portsrepo.TransactionManager
	repo     portsrepo.LedgerRepositoryFacade
	ledger   portssvc.LedgerWriterSvc
	mappings portssvc.MappingResolverSvc
	billing  portsrepo.BillingReader
}

// NewGeneratorService creates the event-driven generators.
func NewGeneratorService(
	txm portsrepo.TransactionManager,
	repo portsrepo.LedgerRepositoryFacade,
	ledger portssvc.LedgerWriterSvc,
	mappings portssvc.MappingResolverSvc,
	billing portsrepo.BillingReader,
) portssvc.GeneratorSvc {
	return &generatorService{
		txm:      txm,
		repo:     repo,
		ledger:   ledger,
		mappings: mappings,
		billing:  billing,
	}
}

var _ portssvc.GeneratorSvc = (*generatorService)(nil)

// generate runs build under the reference lock unless the reference was already posted.
func (s *generatorService) generate(ctx context.Context, tenantID string, ref domain.Reference, periodKey string, build func(ctx context.Context) ([]*domain.Transaction, error)) (*domain.GenerationResult, error) {
	logger := s.GetLogger(ctx).With(slog.String("tenant_id", tenantID), slog.String("reference", ref.String()))
	if periodKey != "" {
		logger = logger.With(slog.String("period", periodKey))
	}
	result := &domain.GenerationResult{Reference: ref, PeriodKey: periodKey, TransactionIDs: []string{}}

	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockReference(ctx, tenantID, lockKey(ref, periodKey)); err != nil {
			return apperrors.Retryable(fmt.Errorf("failed to lock %s: %w", ref, err))
		}
		existing, err := s.repo.FindTransactionsByReference(ctx, tenantID, ref, periodKey)
		if err != nil {
			return apperrors.Retryable(fmt.Errorf("failed to look up %s: %w", ref, err))
		}
		if len(existing) > 0 {
			result.Duplicate = true
			for _, t := range existing {
				result.TransactionIDs = append(result.TransactionIDs, t.TransactionID)
			}
			return nil
		}

		txns, err := build(ctx)
		if err != nil {
			return err
		}
		for _, t := range txns {
			result.TransactionIDs = append(result.TransactionIDs, t.TransactionID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			// a concurrent delivery won the unique index; the redelivery will see its postings
			err = apperrors.Retryable(err)
		}
		logger.Error("Ledger generation failed", slog.String("error", err.Error()), slog.String("kind", apperrors.KindOf(err).String()))
		return nil, err
	}
	if result.Duplicate {
		logger.Info("duplicate posting detected", slog.Any("transaction_ids", result.TransactionIDs))
		return result, nil
	}
	logger.Info("Ledger postings generated", slog.Int("transactions", len(result.TransactionIDs)))
	return result, nil
}

func lockKey(ref domain.Reference, periodKey string) string {
	if periodKey == "" {
		return ref.String()
	}
	return ref.String() + "@" + periodKey
}

func postingKey(ref domain.Reference, part string) string {
	return ref.String() + "#" + part
}

func (s *generatorService) loadInvoice(ctx context.Context, tenantID, invoiceID string) (*domain.Invoice, error) {
	if invoiceID == "" {
		return nil, apperrors.Fatal(fmt.Errorf("%w: event carries no invoice ID", apperrors.ErrValidation))
	}
	invoice, err := s.billing.FindInvoiceByID(ctx, tenantID, invoiceID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invoice %s: %w", apperrors.ErrSourceRecordMissing, invoiceID, err)
		}
		return nil, apperrors.Retryable(fmt.Errorf("failed to load invoice %s: %w", invoiceID, err))
	}
	return invoice, nil
}

// conceptGroups groups the invoice lines; an invoice without lines becomes one unassigned group
// carrying the invoice total.
func conceptGroups(invoice *domain.Invoice) []domain.ConceptGroup {
	if len(invoice.Items) == 0 {
		return []domain.ConceptGroup{{Type: domain.ConceptUnassigned, Total: invoice.Total}}
	}
	return domain.GroupByConcept(invoice.Items)
}

func (s *generatorService) resolveConcept(ctx context.Context, tenantID string, g domain.ConceptGroup) (*domain.ConceptAccounts, error) {
	accounts, err := s.mappings.ResolveForConcept(ctx, tenantID, g.ConceptID, g.Type)
	if err != nil {
		return nil, err
	}
	if accounts == nil {
		return nil, fmt.Errorf("%w: concept %s", apperrors.ErrMissingAccountMapping, g.Key())
	}
	return accounts, nil
}

func apartmentOf(invoice *domain.Invoice) *domain.ThirdParty {
	if invoice.ApartmentID == "" {
		return nil
	}
	return &domain.ThirdParty{Type: thirdPartyApartment, ID: invoice.ApartmentID}
}
