package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
	"github.com/propledger/ledgercore/internal/dto"
	"github.com/propledger/ledgercore/internal/utils/accounting"
)

const (
	defaultEntriesPageSize = 50
	maxEntriesPageSize     = 200
)

// ledgerService owns the transaction state machine. Every mutation runs inside one unit of work
// and the events it emits are queued in that same unit of work.
type ledgerService struct {
	BaseService
	txm      portsrepo.TransactionManager
	repo     portsrepo.LedgerRepositoryFacade
	accounts portssvc.AccountTreeSvc
	events   portsrepo.EventPublisher
	validate *validator.Validate
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(txm portsrepo.TransactionManager, repo portsrepo.LedgerRepositoryFacade, accounts portssvc.AccountTreeSvc, events portsrepo.EventPublisher) portssvc.LedgerSvcFacade {
	return &ledgerService{
		txm:      txm,
		repo:     repo,
		accounts: accounts,
		events:   events,
		validate: validator.New(),
	}
}

var _ portssvc.LedgerSvcFacade = (*ledgerService)(nil)

func (s *ledgerService) newDraft(req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrValidation, err)
	}
	now := s.Now()
	txn := &domain.Transaction{
		TransactionID: uuid.NewString(),
		TenantID:      req.TenantID,
		Date:          req.Date.UTC(),
		Description:   req.Description,
		Reference:     req.Reference,
		Status:        domain.Draft,
		TotalDebit:    decimal.Zero,
		TotalCredit:   decimal.Zero,
		Metadata:      req.Metadata,
		PostingKey:    req.PostingKey,
		AuditFields:   domain.NewAuditFields(req.CreatedBy, now),
	}
	if txn.Reference.Type == "" {
		txn.Reference = domain.Reference{Type: domain.ReferenceManual, ID: txn.TransactionID}
	}
	if txn.PostingKey == "" {
		txn.PostingKey = txn.TransactionID
	}
	return txn, nil
}

func (s *ledgerService) buildEntry(ctx context.Context, txn *domain.Transaction, req dto.AddEntryRequest) (domain.Entry, error) {
	account, err := s.accounts.ResolveByCode(ctx, txn.TenantID, req.AccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrValidation) {
			return domain.Entry{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidAccount, err)
		}
		return domain.Entry{}, err
	}
	return txn.AddEntry(*account, domain.Entry{
		EntryID:      uuid.NewString(),
		DebitAmount:  req.DebitAmount,
		CreditAmount: req.CreditAmount,
		Description:  req.Description,
		ThirdParty:   req.ThirdParty,
		CreatedAt:    s.Now(),
	})
}

func (s *ledgerService) loadForUpdate(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.repo.FindTransactionByID(ctx, tenantID, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to load transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

func (s *ledgerService) touch(txn *domain.Transaction, actor string) {
	txn.LastUpdatedAt = s.Now()
	if actor != "" {
		txn.LastUpdatedBy = actor
	}
}

func (s *ledgerService) publishPosted(ctx context.Context, txn *domain.Transaction) error {
	return s.events.Publish(ctx, txn.TenantID, domain.EventTransactionPosted, domain.TransactionPosted{
		TenantID:      txn.TenantID,
		TransactionID: txn.TransactionID,
		Date:          txn.Date,
		AccountIDs:    txn.AffectedAccountIDs(),
		Reference:     txn.Reference,
	})
}

// Create implements portssvc.LedgerWriterSvc.
func (s *ledgerService) Create(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error) {
	txn, err := s.newDraft(req)
	if err != nil {
		return nil, err
	}
	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.repo.SaveTransaction(ctx, *txn)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to save draft transaction", slog.String("tenant_id", txn.TenantID), slog.String("posting_key", txn.PostingKey))
		return nil, err
	}
	s.LogDebug(ctx, "Draft transaction created", slog.String("transaction_id", txn.TransactionID))
	return txn, nil
}

// AddEntry implements portssvc.LedgerWriterSvc.
func (s *ledgerService) AddEntry(ctx context.Context, tenantID, transactionID string, req dto.AddEntryRequest) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.loadForUpdate(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		entry, err := s.buildEntry(ctx, txn, req)
		if err != nil {
			return err
		}
		s.touch(txn, "")
		return s.repo.InsertEntry(ctx, *txn, entry)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// RemoveEntry implements portssvc.LedgerWriterSvc.
func (s *ledgerService) RemoveEntry(ctx context.Context, tenantID, transactionID, entryID string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.loadForUpdate(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		if err := txn.RemoveEntry(entryID); err != nil {
			return err
		}
		s.touch(txn, "")
		return s.repo.DeleteEntry(ctx, *txn, entryID)
	})
	if err != nil {
		return nil, err
	}
	return txn, nil
}

// DeleteDraft implements portssvc.LedgerWriterSvc.
func (s *ledgerService) DeleteDraft(ctx context.Context, tenantID, transactionID string) error {
	return s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		txn, err := s.loadForUpdate(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		if txn.Status != domain.Draft {
			return fmt.Errorf("%w: only drafts can be deleted, transaction %s is %s", apperrors.ErrInvalidTransition, transactionID, txn.Status)
		}
		return s.repo.DeleteDraft(ctx, tenantID, transactionID)
	})
}

// Post implements portssvc.LedgerWriterSvc.
func (s *ledgerService) Post(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.loadForUpdate(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		from := txn.Status
		if err := txn.Post(s.Now()); err != nil {
			return err
		}
		s.touch(txn, "")
		if err := s.repo.UpdateTransactionStatus(ctx, *txn, from); err != nil {
			return err
		}
		return s.publishPosted(ctx, txn)
	})
	if err != nil {
		s.GetLogger(ctx).Warn("Transaction not posted", slog.String("transaction_id", transactionID), slog.String("error", err.Error()))
		return nil, err
	}
	s.LogInfo(ctx, "Transaction posted",
		slog.String("tenant_id", tenantID),
		slog.String("transaction_id", transactionID),
		slog.String("total", txn.TotalDebit.String()))
	return txn, nil
}

// Cancel implements portssvc.LedgerWriterSvc.
func (s *ledgerService) Cancel(ctx context.Context, tenantID, transactionID, reason, userID string) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		txn, err = s.loadForUpdate(ctx, tenantID, transactionID)
		if err != nil {
			return err
		}
		from := txn.Status
		if err := txn.Cancel(s.Now(), reason); err != nil {
			return err
		}
		s.touch(txn, userID)
		if err := s.repo.UpdateTransactionStatus(ctx, *txn, from); err != nil {
			return err
		}
		return s.events.Publish(ctx, tenantID, domain.EventTransactionCancelled, domain.TransactionCancelled{
			TenantID:      tenantID,
			TransactionID: txn.TransactionID,
			Date:          txn.Date,
			AccountIDs:    txn.AffectedAccountIDs(),
		})
	})
	if err != nil {
		return nil, err
	}
	s.LogInfo(ctx, "Transaction cancelled", slog.String("transaction_id", transactionID), slog.String("reason", reason))
	return txn, nil
}

// RecordBalanced implements portssvc.LedgerWriterSvc.
func (s *ledgerService) RecordBalanced(ctx context.Context, req dto.CreateTransactionRequest, entries []dto.AddEntryRequest) (*domain.Transaction, error) {
	txn, err := s.newDraft(req)
	if err != nil {
		return nil, err
	}
	err = s.txm.WithinTransaction(ctx, func(ctx context.Context) error {
		for _, e := range entries {
			if _, err := s.buildEntry(ctx, txn, e); err != nil {
				return err
			}
		}
		if err := txn.Post(s.Now()); err != nil {
			return err
		}
		if err := s.repo.SaveTransaction(ctx, *txn); err != nil {
			return err
		}
		return s.publishPosted(ctx, txn)
	})
	if err != nil {
		return nil, err
	}
	s.LogDebug(ctx, "Balanced transaction recorded",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("reference", txn.Reference.String()),
		slog.Int("entries", len(txn.Entries)))
	return txn, nil
}

// GetTransaction implements portssvc.LedgerReaderSvc.
func (s *ledgerService) GetTransaction(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	txn, err := s.repo.FindTransactionByID(ctx, tenantID, transactionID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get transaction", slog.String("transaction_id", transactionID))
		}
		return nil, err
	}
	return txn, nil
}

// FindByReference implements portssvc.LedgerReaderSvc.
func (s *ledgerService) FindByReference(ctx context.Context, tenantID string, ref domain.Reference, periodKey string) ([]domain.Transaction, error) {
	txns, err := s.repo.FindTransactionsByReference(ctx, tenantID, ref, periodKey)
	if err != nil {
		s.LogError(ctx, err, "Failed to find transactions by reference", slog.String("reference", ref.String()))
		return nil, fmt.Errorf("failed to find transactions for %s: %w", ref, err)
	}
	if txns == nil {
		return []domain.Transaction{}, nil
	}
	return txns, nil
}

// AccountBalance implements portssvc.LedgerReaderSvc.
func (s *ledgerService) AccountBalance(ctx context.Context, tenantID, accountID string, from, to time.Time) (decimal.Decimal, error) {
	if !to.After(from) {
		return decimal.Zero, fmt.Errorf("%w: balance range end must be after its start", apperrors.ErrValidation)
	}
	account, err := s.accounts.ResolveByID(ctx, tenantID, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	debit, credit, err := s.repo.SumPostedEntries(ctx, tenantID, accountID, from, to)
	if err != nil {
		s.LogError(ctx, err, "Failed to sum posted entries", slog.String("account_id", accountID))
		return decimal.Zero, fmt.Errorf("failed to compute balance of %s: %w", account.Code, err)
	}
	return accounting.SignedAmount(domain.Entry{AccountID: accountID, DebitAmount: debit, CreditAmount: credit}, account.NormalBalance)
}

// ListEntriesByAccount implements portssvc.LedgerReaderSvc.
func (s *ledgerService) ListEntriesByAccount(ctx context.Context, tenantID, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultEntriesPageSize
	}
	if limit > maxEntriesPageSize {
		limit = maxEntriesPageSize
	}
	entries, next, err := s.repo.ListPostedEntriesByAccount(ctx, tenantID, accountID, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list entries", slog.String("account_id", accountID))
		return nil, err
	}
	return &dto.ListEntriesResponse{Entries: dto.ToEntryResponses(entries), NextToken: next}, nil
}
