package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
	"github.com/propledger/ledgercore/internal/core/services"
	"github.com/propledger/ledgercore/internal/dto"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	env *testEnv
	ctx context.Context
}

func (s *LedgerServiceTestSuite) SetupTest() {
	s.env = newTestEnv(s.T())
	s.ctx = context.Background()
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (s *LedgerServiceTestSuite) draft() *domain.Transaction {
	txn, err := s.env.svc.Ledger.Create(s.ctx, dto.CreateTransactionRequest{
		TenantID:    testTenant,
		Date:        march2024,
		Description: "Maintenance invoice",
		CreatedBy:   "user-1",
	})
	s.Require().NoError(err)
	return txn
}

func (s *LedgerServiceTestSuite) TestCreate_StartsAsEmptyDraft() {
	txn := s.draft()

	s.Equal(domain.Draft, txn.Status)
	s.True(txn.TotalDebit.IsZero())
	s.True(txn.TotalCredit.IsZero())
	s.Equal(domain.ReferenceManual, txn.Reference.Type)
	s.NotEmpty(txn.PostingKey)
}

func (s *LedgerServiceTestSuite) TestCreate_ValidationError() {
	_, err := s.env.svc.Ledger.Create(s.ctx, dto.CreateTransactionRequest{TenantID: testTenant})
	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *LedgerServiceTestSuite) TestCreate_DuplicatePostingKey() {
	req := dto.CreateTransactionRequest{
		TenantID: testTenant, Date: march2024, Description: "x", CreatedBy: "u", PostingKey: "same",
	}
	_, err := s.env.svc.Ledger.Create(s.ctx, req)
	s.Require().NoError(err)
	_, err = s.env.svc.Ledger.Create(s.ctx, req)
	s.ErrorIs(err, apperrors.ErrDuplicate)
}

func (s *LedgerServiceTestSuite) TestPost_Success() {
	txn := s.draft()
	_, err := s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: "513525", DebitAmount: dec("1200.50")})
	s.Require().NoError(err)
	updated, err := s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: "111005", CreditAmount: dec("1200.50")})
	s.Require().NoError(err)
	s.True(updated.TotalDebit.Equal(dec("1200.50")))
	s.True(updated.TotalCredit.Equal(dec("1200.50")))

	posted, err := s.env.svc.Ledger.Post(s.ctx, testTenant, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.Posted, posted.Status)
	s.NotNil(posted.PostedAt)

	s.True(s.env.balance(s.T(), "513525").Equal(dec("1200.50")))
	s.True(s.env.balance(s.T(), "111005").Equal(dec("-1200.50")))
	s.Len(s.env.store.PendingEvents(domain.EventTransactionPosted), 1)
}

func (s *LedgerServiceTestSuite) TestAddEntry_RejectsNonPostableAccounts() {
	txn := s.draft()
	for _, code := range []string{"51", "519595", "999999"} {
		_, err := s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: code, DebitAmount: dec("10")})
		s.ErrorIs(err, apperrors.ErrInvalidAccount, "code %s", code)
	}

	stored, err := s.env.svc.Ledger.GetTransaction(s.ctx, testTenant, txn.TransactionID)
	s.Require().NoError(err)
	s.Empty(stored.Entries)
}

func (s *LedgerServiceTestSuite) TestAddEntry_RejectsInvalidAmounts() {
	txn := s.draft()
	cases := []dto.AddEntryRequest{
		{AccountCode: "513525", DebitAmount: dec("10"), CreditAmount: dec("10")},
		{AccountCode: "513525"},
		{AccountCode: "513525", DebitAmount: dec("-5")},
		{AccountCode: "513525", DebitAmount: dec("1.005")},
	}
	for _, req := range cases {
		_, err := s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, req)
		s.ErrorIs(err, apperrors.ErrInvalidAmount)
	}
}

func (s *LedgerServiceTestSuite) TestPost_EmptyAndUnbalanced() {
	txn := s.draft()
	_, err := s.env.svc.Ledger.Post(s.ctx, testTenant, txn.TransactionID)
	s.ErrorIs(err, apperrors.ErrEmptyTransaction)

	_, err = s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: "513525", DebitAmount: dec("100")})
	s.Require().NoError(err)
	_, err = s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: "111005", CreditAmount: dec("99.99")})
	s.Require().NoError(err)

	_, err = s.env.svc.Ledger.Post(s.ctx, testTenant, txn.TransactionID)
	s.ErrorIs(err, apperrors.ErrUnbalancedTransaction)

	stored, err := s.env.svc.Ledger.GetTransaction(s.ctx, testTenant, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.Draft, stored.Status)
	s.Empty(s.env.store.PendingEvents(domain.EventTransactionPosted))
}

func (s *LedgerServiceTestSuite) TestPostedTransactionsAreImmutable() {
	txn := s.env.post(s.T(), march2024, "513525", "111005", "50")

	_, err := s.env.svc.Ledger.Post(s.ctx, testTenant, txn.TransactionID)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: "513525", DebitAmount: dec("1")})
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	_, err = s.env.svc.Ledger.RemoveEntry(s.ctx, testTenant, txn.TransactionID, txn.Entries[0].EntryID)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	err = s.env.svc.Ledger.DeleteDraft(s.ctx, testTenant, txn.TransactionID)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *LedgerServiceTestSuite) TestCancel_ExcludesFromBalances() {
	txn := s.env.post(s.T(), march2024, "513525", "111005", "75")
	s.True(s.env.balance(s.T(), "513525").Equal(dec("75")))

	cancelled, err := s.env.svc.Ledger.Cancel(s.ctx, testTenant, txn.TransactionID, "entered twice", "user-2")
	s.Require().NoError(err)
	s.Equal(domain.Cancelled, cancelled.Status)
	s.Equal("entered twice", cancelled.CancelReason)
	s.Equal("user-2", cancelled.LastUpdatedBy)

	s.True(s.env.balance(s.T(), "513525").IsZero())
	s.Len(s.env.store.PendingEvents(domain.EventTransactionCancelled), 1)

	_, err = s.env.svc.Ledger.Cancel(s.ctx, testTenant, txn.TransactionID, "again", "user-2")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

// staleReadRepo hands out a copy of one transaction taken earlier, the way a writer sees the
// row when another writer commits between its read and its update.
type staleReadRepo struct {
	portsrepo.LedgerRepositoryFacade
	pinned domain.Transaction
}

func (r *staleReadRepo) FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	if transactionID != r.pinned.TransactionID {
		return r.LedgerRepositoryFacade.FindTransactionByID(ctx, tenantID, transactionID)
	}
	t := r.pinned
	t.Entries = append([]domain.Entry(nil), r.pinned.Entries...)
	return &t, nil
}

func (s *LedgerServiceTestSuite) laggingLedger(pinned *domain.Transaction) *portssvc.ServiceContainer {
	repos := *s.env.store.Provider()
	repos.LedgerRepo = &staleReadRepo{LedgerRepositoryFacade: s.env.store, pinned: *pinned}
	return services.NewContainer(&repos, services.Options{})
}

func (s *LedgerServiceTestSuite) TestPost_StaleDraftCannotReviveCancelled() {
	txn := s.draft()
	_, err := s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: "513525", DebitAmount: dec("40")})
	s.Require().NoError(err)
	draft, err := s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: "111005", CreditAmount: dec("40")})
	s.Require().NoError(err)

	lagging := s.laggingLedger(draft)

	_, err = s.env.svc.Ledger.Post(s.ctx, testTenant, txn.TransactionID)
	s.Require().NoError(err)
	_, err = s.env.svc.Ledger.Cancel(s.ctx, testTenant, txn.TransactionID, "wrong period", "user-2")
	s.Require().NoError(err)

	_, err = lagging.Ledger.Post(s.ctx, testTenant, txn.TransactionID)
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	stored, err := s.env.svc.Ledger.GetTransaction(s.ctx, testTenant, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal(domain.Cancelled, stored.Status)
	s.Len(s.env.store.PendingEvents(domain.EventTransactionPosted), 1)
	s.True(s.env.balance(s.T(), "513525").IsZero())
}

func (s *LedgerServiceTestSuite) TestCancel_StalePostedCopyCancelsOnce() {
	txn := s.env.post(s.T(), march2024, "513525", "111005", "60")
	lagging := s.laggingLedger(txn)

	_, err := s.env.svc.Ledger.Cancel(s.ctx, testTenant, txn.TransactionID, "duplicate", "user-1")
	s.Require().NoError(err)

	_, err = lagging.Ledger.Cancel(s.ctx, testTenant, txn.TransactionID, "duplicate", "user-2")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)

	stored, err := s.env.svc.Ledger.GetTransaction(s.ctx, testTenant, txn.TransactionID)
	s.Require().NoError(err)
	s.Equal("user-1", stored.LastUpdatedBy)
	s.Len(s.env.store.PendingEvents(domain.EventTransactionCancelled), 1)
}

func (s *LedgerServiceTestSuite) TestCancel_DraftIsInvalid() {
	txn := s.draft()
	_, err := s.env.svc.Ledger.Cancel(s.ctx, testTenant, txn.TransactionID, "no", "user-1")
	s.ErrorIs(err, apperrors.ErrInvalidTransition)
}

func (s *LedgerServiceTestSuite) TestRemoveEntryAndDeleteDraft() {
	txn := s.draft()
	withEntry, err := s.env.svc.Ledger.AddEntry(s.ctx, testTenant, txn.TransactionID, dto.AddEntryRequest{AccountCode: "513525", DebitAmount: dec("10")})
	s.Require().NoError(err)

	after, err := s.env.svc.Ledger.RemoveEntry(s.ctx, testTenant, txn.TransactionID, withEntry.Entries[0].EntryID)
	s.Require().NoError(err)
	s.Empty(after.Entries)
	s.True(after.TotalDebit.IsZero())

	s.Require().NoError(s.env.svc.Ledger.DeleteDraft(s.ctx, testTenant, txn.TransactionID))
	_, err = s.env.svc.Ledger.GetTransaction(s.ctx, testTenant, txn.TransactionID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *LedgerServiceTestSuite) TestRecordBalanced_RollsBackOnInvalidEntry() {
	_, err := s.env.svc.Ledger.RecordBalanced(s.ctx, dto.CreateTransactionRequest{
		TenantID: testTenant, Date: march2024, Description: "bad", CreatedBy: "u", PostingKey: "k-1",
	}, []dto.AddEntryRequest{
		{AccountCode: "513525", DebitAmount: dec("10")},
		{AccountCode: "51", CreditAmount: dec("10")},
	})
	s.ErrorIs(err, apperrors.ErrInvalidAccount)
	s.Empty(s.env.store.PendingEvents())

	// nothing was stored, so the posting key is still free
	_, err = s.env.svc.Ledger.RecordBalanced(s.ctx, dto.CreateTransactionRequest{
		TenantID: testTenant, Date: march2024, Description: "good", CreatedBy: "u", PostingKey: "k-1",
	}, []dto.AddEntryRequest{
		{AccountCode: "513525", DebitAmount: dec("10")},
		{AccountCode: "111005", CreditAmount: dec("10")},
	})
	s.Require().NoError(err)
}

func (s *LedgerServiceTestSuite) TestListEntriesByAccount_Paginates() {
	for i := 0; i < 3; i++ {
		s.env.post(s.T(), march2024.AddDate(0, 0, i), "513525", "111005", "10")
	}
	account, err := s.env.svc.AccountTree.ResolveByCode(s.ctx, testTenant, "513525")
	s.Require().NoError(err)

	first, err := s.env.svc.Ledger.ListEntriesByAccount(s.ctx, testTenant, account.AccountID, dto.ListEntriesParams{Limit: 2})
	s.Require().NoError(err)
	s.Len(first.Entries, 2)
	s.Require().NotNil(first.NextToken)

	second, err := s.env.svc.Ledger.ListEntriesByAccount(s.ctx, testTenant, account.AccountID, dto.ListEntriesParams{Limit: 2, NextToken: first.NextToken})
	s.Require().NoError(err)
	s.Len(second.Entries, 1)
	s.Nil(second.NextToken)

	seen := map[string]bool{}
	for _, e := range append(first.Entries, second.Entries...) {
		s.False(seen[e.EntryID])
		seen[e.EntryID] = true
	}
}

func (s *LedgerServiceTestSuite) TestAccountBalance_RespectsRange() {
	s.env.post(s.T(), march2024, "513525", "111005", "10")
	s.env.post(s.T(), march2024.AddDate(0, 1, 0), "513525", "111005", "20")
	account, err := s.env.svc.AccountTree.ResolveByCode(s.ctx, testTenant, "513525")
	s.Require().NoError(err)

	period := domain.PeriodOf(march2024)
	bal, err := s.env.svc.Ledger.AccountBalance(s.ctx, testTenant, account.AccountID, period.Start(), period.End())
	s.Require().NoError(err)
	s.True(bal.Equal(dec("10")))

	_, err = s.env.svc.Ledger.AccountBalance(s.ctx, testTenant, account.AccountID, period.End(), period.Start())
	s.ErrorIs(err, apperrors.ErrValidation)
}
