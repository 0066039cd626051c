package repositories

import (
	"context"
	"time"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations over transactions and entries.
type LedgerReader interface {
	// FindTransactionByID retrieves a transaction with its entries. Inside a unit of work the
	// header stays locked until it ends.
	FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error)

	// FindTransactionsByReference returns transactions carrying ref. When periodKey is non-empty
	// only transactions whose metadata period equals it are returned.
	FindTransactionsByReference(ctx context.Context, tenantID string, ref domain.Reference, periodKey string) ([]domain.Transaction, error)

	// SumPostedEntries returns debit and credit sums of POSTED entries for an account with
	// transaction dates in [from, to).
	SumPostedEntries(ctx context.Context, tenantID, accountID string, from, to time.Time) (debit decimal.Decimal, credit decimal.Decimal, err error)

	// ListPostedEntriesByAccount pages through posted entries of an account, newest first.
	ListPostedEntriesByAccount(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error)
}

// LedgerWriter defines write operations. Callers hold the unit of work.
type LedgerWriter interface {
	// LockReference serialises writers deriving transactions from the same business record
	// until the surrounding database transaction ends.
	LockReference(ctx context.Context, tenantID, key string) error

	// SaveTransaction inserts a transaction header (status, totals) and its entries.
	SaveTransaction(ctx context.Context, txn domain.Transaction) error

	// InsertEntry appends one entry to an existing draft and stores the new header totals.
	InsertEntry(ctx context.Context, txn domain.Transaction, entry domain.Entry) error

	// DeleteEntry removes one entry of a draft and stores the new header totals.
	DeleteEntry(ctx context.Context, txn domain.Transaction, entryID string) error

	// UpdateTransactionStatus persists a status transition and its timestamps. It fails with
	// apperrors.ErrInvalidTransition unless the stored status is still from.
	UpdateTransactionStatus(ctx context.Context, txn domain.Transaction, from domain.TransactionStatus) error

	// DeleteDraft removes a draft and cascades to its entries.
	DeleteDraft(ctx context.Context, tenantID, transactionID string) error
}

// LedgerRepositoryFacade combines all ledger repository interfaces.
type LedgerRepositoryFacade interface {
	LedgerReader
	LedgerWriter
}
