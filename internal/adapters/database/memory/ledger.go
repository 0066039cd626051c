package memory

import (
	"context"
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	"github.com/propledger/ledgercore/internal/utils/pagination"
)

var _ portsrepo.LedgerRepositoryFacade = (*Store)(nil)

func copyTransaction(t domain.Transaction) domain.Transaction {
	t.Entries = append([]domain.Entry(nil), t.Entries...)
	t.Metadata = maps.Clone(t.Metadata)
	return t
}

func (s *Store) transaction(tenantID, transactionID string) (domain.Transaction, error) {
	t, ok := s.txns[transactionID]
	if !ok || t.TenantID != tenantID {
		return domain.Transaction{}, apperrors.NewNotFoundError("transaction " + transactionID + " not found")
	}
	return t, nil
}

// FindTransactionByID implements portsrepo.LedgerReader.
func (s *Store) FindTransactionByID(_ context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, err := s.transaction(tenantID, transactionID)
	if err != nil {
		return nil, err
	}
	t = copyTransaction(t)
	return &t, nil
}

// FindTransactionsByReference implements portsrepo.LedgerReader.
func (s *Store) FindTransactionsByReference(_ context.Context, tenantID string, ref domain.Reference, periodKey string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make([]domain.Transaction, 0)
	for _, t := range s.txns {
		if t.TenantID != tenantID || t.Reference != ref {
			continue
		}
		if periodKey != "" && t.Metadata[domain.MetadataPeriodKey] != periodKey {
			continue
		}
		found = append(found, copyTransaction(t))
	}
	sort.Slice(found, func(i, j int) bool {
		if !found[i].CreatedAt.Equal(found[j].CreatedAt) {
			return found[i].CreatedAt.Before(found[j].CreatedAt)
		}
		return found[i].PostingKey < found[j].PostingKey
	})
	return found, nil
}

// SumPostedEntries implements portsrepo.LedgerReader.
func (s *Store) SumPostedEntries(_ context.Context, tenantID, accountID string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	debit, credit := decimal.Zero, decimal.Zero
	for _, t := range s.txns {
		if t.TenantID != tenantID || t.Status != domain.Posted || t.Date.Before(from) || !t.Date.Before(to) {
			continue
		}
		for _, e := range t.Entries {
			if e.AccountID == accountID {
				debit = debit.Add(e.DebitAmount)
				credit = credit.Add(e.CreditAmount)
			}
		}
	}
	return debit, credit, nil
}

// ListPostedEntriesByAccount implements portsrepo.LedgerReader.
func (s *Store) ListPostedEntriesByAccount(_ context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	var cursor *pagination.Cursor
	if nextToken != nil && *nextToken != "" {
		c, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		cursor = &c
	}

	s.mu.RLock()
	type row struct {
		date  time.Time
		entry domain.Entry
	}
	rows := make([]row, 0)
	for _, t := range s.txns {
		if t.TenantID != tenantID || t.Status != domain.Posted {
			continue
		}
		for _, e := range t.Entries {
			if e.AccountID != accountID {
				continue
			}
			if cursor != nil && !cursor.After(t.Date, e.CreatedAt, e.EntryID) {
				continue
			}
			rows = append(rows, row{date: t.Date, entry: e})
		}
	}
	s.mu.RUnlock()

	sort.Slice(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if !a.date.Equal(b.date) {
			return a.date.After(b.date)
		}
		if !a.entry.CreatedAt.Equal(b.entry.CreatedAt) {
			return a.entry.CreatedAt.After(b.entry.CreatedAt)
		}
		return a.entry.EntryID > b.entry.EntryID
	})

	var next *string
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.date, CreatedAt: last.entry.CreatedAt, ID: last.entry.EntryID})
		next = &token
	}
	entries := make([]domain.Entry, len(rows))
	for i, r := range rows {
		entries[i] = r.entry
	}
	return entries, next, nil
}

// LockReference implements portsrepo.LedgerWriter. Units of work are already serialised.
func (s *Store) LockReference(_ context.Context, _, _ string) error {
	return nil
}

// SaveTransaction implements portsrepo.LedgerWriter.
func (s *Store) SaveTransaction(_ context.Context, txn domain.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	pk := tenantKey(txn.TenantID, txn.PostingKey)
	if _, exists := s.postingKeys[pk]; exists {
		return fmt.Errorf("%w: posting key %s", apperrors.ErrDuplicate, txn.PostingKey)
	}
	if _, exists := s.txns[txn.TransactionID]; exists {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrDuplicate, txn.TransactionID)
	}
	s.txns[txn.TransactionID] = copyTransaction(txn)
	s.postingKeys[pk] = txn.TransactionID
	return nil
}

func (s *Store) updateDraft(txn domain.Transaction, mutate func(stored *domain.Transaction)) error {
	stored, err := s.transaction(txn.TenantID, txn.TransactionID)
	if err != nil {
		return err
	}
	if stored.Status != domain.Draft {
		return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrInvalidTransition, txn.TransactionID, stored.Status)
	}
	mutate(&stored)
	stored.TotalDebit = txn.TotalDebit
	stored.TotalCredit = txn.TotalCredit
	stored.LastUpdatedAt = txn.LastUpdatedAt
	stored.LastUpdatedBy = txn.LastUpdatedBy
	s.txns[txn.TransactionID] = stored
	return nil
}

// InsertEntry implements portsrepo.LedgerWriter.
func (s *Store) InsertEntry(_ context.Context, txn domain.Transaction, entry domain.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateDraft(txn, func(stored *domain.Transaction) {
		stored.Entries = append(stored.Entries, entry)
	})
}

// DeleteEntry implements portsrepo.LedgerWriter.
func (s *Store) DeleteEntry(_ context.Context, txn domain.Transaction, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.updateDraft(txn, func(stored *domain.Transaction) {
		kept := stored.Entries[:0:0]
		for _, e := range stored.Entries {
			if e.EntryID != entryID {
				kept = append(kept, e)
			}
		}
		stored.Entries = kept
	})
}

// UpdateTransactionStatus implements portsrepo.LedgerWriter.
func (s *Store) UpdateTransactionStatus(_ context.Context, txn domain.Transaction, from domain.TransactionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.transaction(txn.TenantID, txn.TransactionID)
	if err != nil {
		return err
	}
	if stored.Status != from {
		return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrInvalidTransition, txn.TransactionID, stored.Status)
	}
	stored.Status = txn.Status
	stored.PostedAt = txn.PostedAt
	stored.CancelledAt = txn.CancelledAt
	stored.CancelReason = txn.CancelReason
	stored.LastUpdatedAt = txn.LastUpdatedAt
	stored.LastUpdatedBy = txn.LastUpdatedBy
	s.txns[txn.TransactionID] = stored
	return nil
}

// DeleteDraft implements portsrepo.LedgerWriter.
func (s *Store) DeleteDraft(_ context.Context, tenantID, transactionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, err := s.transaction(tenantID, transactionID)
	if err != nil {
		return err
	}
	if stored.Status != domain.Draft {
		return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrInvalidTransition, transactionID, stored.Status)
	}
	delete(s.txns, transactionID)
	delete(s.postingKeys, tenantKey(tenantID, stored.PostingKey))
	return nil
}
