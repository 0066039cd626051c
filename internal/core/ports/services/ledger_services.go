package services

import (
	"context"
	"time"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerWriterSvc drives the posting state machine.
type LedgerWriterSvc interface {
	// Create stores a new DRAFT transaction with zero totals.
	Create(ctx context.Context, req dto.CreateTransactionRequest) (*domain.Transaction, error)

	// AddEntry appends an entry to a draft and recomputes totals.
	AddEntry(ctx context.Context, tenantID, transactionID string, req dto.AddEntryRequest) (*domain.Transaction, error)

	// RemoveEntry deletes an entry from a draft.
	RemoveEntry(ctx context.Context, tenantID, transactionID, entryID string) (*domain.Transaction, error)

	// DeleteDraft removes a draft together with its entries.
	DeleteDraft(ctx context.Context, tenantID, transactionID string) error

	// Post transitions a balanced draft to POSTED and publishes TransactionPosted.
	Post(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error)

	// Cancel transitions a POSTED transaction to CANCELLED and publishes TransactionCancelled.
	Cancel(ctx context.Context, tenantID, transactionID, reason, userID string) (*domain.Transaction, error)

	// RecordBalanced creates, fills and posts a transaction in one unit of work.
	RecordBalanced(ctx context.Context, req dto.CreateTransactionRequest, entries []dto.AddEntryRequest) (*domain.Transaction, error)
}

// LedgerReaderSvc is the ledger query surface.
type LedgerReaderSvc interface {
	// GetTransaction returns a transaction with its entries.
	GetTransaction(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error)

	// FindByReference returns transactions carrying ref, filtered by periodKey when set.
	FindByReference(ctx context.Context, tenantID string, ref domain.Reference, periodKey string) ([]domain.Transaction, error)

	// AccountBalance returns the posted balance of an account on its normal side over [from, to).
	AccountBalance(ctx context.Context, tenantID, accountID string, from, to time.Time) (decimal.Decimal, error)

	// ListEntriesByAccount pages through posted entries of an account.
	ListEntriesByAccount(ctx context.Context, tenantID, accountID string, params dto.ListEntriesParams) (*dto.ListEntriesResponse, error)
}

// LedgerSvcFacade combines all ledger service interfaces.
type LedgerSvcFacade interface {
	LedgerWriterSvc
	LedgerReaderSvc
}
