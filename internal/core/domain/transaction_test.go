package domain_test

import (
	"testing"
	"time"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func leaf(code string) domain.Account {
	return domain.Account{AccountID: "acc-" + code, Code: code, AcceptsPosting: true, IsActive: true}
}

func debit(amount string) domain.Entry {
	return domain.Entry{DebitAmount: decimal.RequireFromString(amount)}
}

func credit(amount string) domain.Entry {
	return domain.Entry{CreditAmount: decimal.RequireFromString(amount)}
}

func TestEntry_ValidateAmounts(t *testing.T) {
	tests := []struct {
		name    string
		entry   domain.Entry
		wantErr bool
	}{
		{name: "debit only", entry: debit("100.00")},
		{name: "credit only", entry: credit("0.01")},
		{name: "both positive", entry: domain.Entry{DebitAmount: decimal.NewFromInt(1), CreditAmount: decimal.NewFromInt(1)}, wantErr: true},
		{name: "neither positive", entry: domain.Entry{}, wantErr: true},
		{name: "negative debit", entry: domain.Entry{DebitAmount: decimal.NewFromInt(-5), CreditAmount: decimal.NewFromInt(5)}, wantErr: true},
		{name: "sub-cent amount", entry: debit("10.001"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.ValidateAmounts()
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTransaction_AddEntry(t *testing.T) {
	txn := domain.Transaction{TransactionID: "txn-1", Status: domain.Draft}

	_, err := txn.AddEntry(leaf("130505"), debit("200000"))
	require.NoError(t, err)
	_, err = txn.AddEntry(leaf("417005"), credit("150000"))
	require.NoError(t, err)

	assert.Len(t, txn.Entries, 2)
	assert.True(t, txn.TotalDebit.Equal(decimal.NewFromInt(200000)))
	assert.True(t, txn.TotalCredit.Equal(decimal.NewFromInt(150000)))
	assert.Equal(t, "acc-130505", txn.Entries[0].AccountID)
	assert.Equal(t, "txn-1", txn.Entries[1].TransactionID)

	t.Run("group account is rejected", func(t *testing.T) {
		group := domain.Account{AccountID: "acc-51", Code: "51", AcceptsPosting: false, IsActive: true}
		_, err := txn.AddEntry(group, debit("10"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)
	})

	t.Run("inactive account is rejected", func(t *testing.T) {
		inactive := leaf("519595")
		inactive.IsActive = false
		_, err := txn.AddEntry(inactive, debit("10"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)
	})

	t.Run("invalid amount leaves totals unchanged", func(t *testing.T) {
		_, err := txn.AddEntry(leaf("417005"), domain.Entry{})
		assert.ErrorIs(t, err, apperrors.ErrInvalidAmount)
		assert.Len(t, txn.Entries, 2)
	})
}

func TestTransaction_StateMachine(t *testing.T) {
	now := time.Date(2026, 10, 5, 12, 0, 0, 0, time.UTC)

	balanced := func() *domain.Transaction {
		txn := &domain.Transaction{TransactionID: "txn-2", Status: domain.Draft}
		_, err := txn.AddEntry(leaf("110505"), debit("50000"))
		require.NoError(t, err)
		_, err = txn.AddEntry(leaf("130505"), credit("50000"))
		require.NoError(t, err)
		return txn
	}

	t.Run("post balanced draft", func(t *testing.T) {
		txn := balanced()
		require.NoError(t, txn.Post(now))
		assert.Equal(t, domain.Posted, txn.Status)
		require.NotNil(t, txn.PostedAt)
		assert.True(t, txn.TotalDebit.Equal(txn.TotalCredit))
	})

	t.Run("post twice is rejected", func(t *testing.T) {
		txn := balanced()
		require.NoError(t, txn.Post(now))
		assert.ErrorIs(t, txn.Post(now), apperrors.ErrInvalidTransition)
	})

	t.Run("add entry after post is rejected", func(t *testing.T) {
		txn := balanced()
		require.NoError(t, txn.Post(now))
		_, err := txn.AddEntry(leaf("110505"), debit("1"))
		assert.ErrorIs(t, err, apperrors.ErrInvalidTransition)
	})

	t.Run("cancel draft is rejected", func(t *testing.T) {
		txn := balanced()
		assert.ErrorIs(t, txn.Cancel(now, "oops"), apperrors.ErrInvalidTransition)
		assert.Equal(t, domain.Draft, txn.Status)
	})

	t.Run("cancel posted", func(t *testing.T) {
		txn := balanced()
		require.NoError(t, txn.Post(now))
		require.NoError(t, txn.Cancel(now, "duplicate receipt"))
		assert.Equal(t, domain.Cancelled, txn.Status)
		assert.ErrorIs(t, txn.Cancel(now, "again"), apperrors.ErrInvalidTransition)
		assert.ErrorIs(t, txn.Post(now), apperrors.ErrInvalidTransition)
	})

	t.Run("empty draft cannot be posted", func(t *testing.T) {
		txn := &domain.Transaction{TransactionID: "txn-3", Status: domain.Draft}
		assert.ErrorIs(t, txn.Post(now), apperrors.ErrEmptyTransaction)
	})

	t.Run("unbalanced draft cannot be posted", func(t *testing.T) {
		txn := balanced()
		_, err := txn.AddEntry(leaf("110505"), debit("0.01"))
		require.NoError(t, err)
		assert.ErrorIs(t, txn.Post(now), apperrors.ErrUnbalancedTransaction)
		assert.Equal(t, domain.Draft, txn.Status)
	})

	t.Run("tampered header totals are caught", func(t *testing.T) {
		txn := balanced()
		txn.TotalDebit = decimal.NewFromInt(1)
		assert.ErrorIs(t, txn.Post(now), apperrors.ErrUnbalancedTransaction)
	})

	t.Run("remove entry from draft", func(t *testing.T) {
		txn := balanced()
		txn.Entries[0].EntryID = "e-1"
		require.NoError(t, txn.RemoveEntry("e-1"))
		assert.Len(t, txn.Entries, 1)
		assert.True(t, txn.TotalDebit.IsZero())
		assert.ErrorIs(t, txn.RemoveEntry("missing"), apperrors.ErrNotFound)
	})
}

func TestTransaction_AffectedAccountIDs(t *testing.T) {
	txn := domain.Transaction{Entries: []domain.Entry{
		{AccountID: "a"}, {AccountID: "b"}, {AccountID: "a"},
	}}
	assert.Equal(t, []string{"a", "b"}, txn.AffectedAccountIDs())
}
