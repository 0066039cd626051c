package domain

import (
	"fmt"
	"time"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the posting state of a ledger transaction.
// DRAFT is the only initial state; POSTED and CANCELLED never go back.
type TransactionStatus string

const (
	Draft     TransactionStatus = "DRAFT"
	Posted    TransactionStatus = "POSTED"
	Cancelled TransactionStatus = "CANCELLED"
)

// ReferenceType names the kind of business record a transaction was derived from.
type ReferenceType string

const (
	ReferenceInvoice ReferenceType = "invoice"
	ReferencePayment ReferenceType = "payment"
	ReferenceLateFee ReferenceType = "late_fee"
	ReferenceManual  ReferenceType = "manual"
)

// MetadataPeriodKey is the metadata key holding the billing period ("2006-01") used for dedup.
const MetadataPeriodKey = "period"

// Reference points at the business record behind a transaction, e.g. invoice/42.
type Reference struct {
	Type ReferenceType `json:"type"`
	ID   string        `json:"id"`
}

func (r Reference) String() string {
	return fmt.Sprintf("%s/%s", r.Type, r.ID)
}

// ThirdParty identifies the counterpart of an entry, e.g. an apartment.
type ThirdParty struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// Entry is one line of a transaction. Exactly one of DebitAmount/CreditAmount is positive.
type Entry struct {
	EntryID       string          `json:"entryID"`
	TransactionID string          `json:"transactionID"`
	AccountID     string          `json:"accountID"`
	AccountCode   string          `json:"accountCode"`
	DebitAmount   decimal.Decimal `json:"debitAmount"`
	CreditAmount  decimal.Decimal `json:"creditAmount"`
	Description   string          `json:"description"`
	ThirdParty    *ThirdParty     `json:"thirdParty,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// IsDebit reports whether the entry sits on the debit side.
func (e Entry) IsDebit() bool {
	return e.DebitAmount.IsPositive()
}

// Amount returns the non-zero side of the entry.
func (e Entry) Amount() decimal.Decimal {
	if e.IsDebit() {
		return e.DebitAmount
	}
	return e.CreditAmount
}

// ValidateAmounts enforces debit XOR credit, non-negativity and the money scale.
func (e Entry) ValidateAmounts() error {
	if e.DebitAmount.IsNegative() || e.CreditAmount.IsNegative() {
		return fmt.Errorf("%w: amounts must not be negative (debit %s, credit %s)", apperrors.ErrInvalidAmount, e.DebitAmount, e.CreditAmount)
	}
	if e.DebitAmount.IsPositive() == e.CreditAmount.IsPositive() {
		return fmt.Errorf("%w: exactly one of debit or credit must be positive (debit %s, credit %s)", apperrors.ErrInvalidAmount, e.DebitAmount, e.CreditAmount)
	}
	amount := e.Amount()
	if !amount.Equal(amount.Truncate(MoneyScale)) {
		return fmt.Errorf("%w: amount %s exceeds %d decimal places", apperrors.ErrInvalidAmount, amount, MoneyScale)
	}
	return nil
}

// Transaction is a ledger header plus the entries it owns.
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	TenantID      string            `json:"tenantID"`
	Date          time.Time         `json:"date"`
	Description   string            `json:"description"`
	Reference     Reference         `json:"reference"`
	Status        TransactionStatus `json:"status"`
	TotalDebit    decimal.Decimal   `json:"totalDebit"`
	TotalCredit   decimal.Decimal   `json:"totalCredit"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	PostingKey    string            `json:"postingKey"` // unique per tenant, backs idempotence
	PostedAt      *time.Time        `json:"postedAt,omitempty"`
	CancelledAt   *time.Time        `json:"cancelledAt,omitempty"`
	CancelReason  string            `json:"cancelReason,omitempty"`
	Entries       []Entry           `json:"entries,omitempty"`
	AuditFields
}

// Period returns the accounting period the transaction date falls into.
func (t Transaction) Period() Period {
	return PeriodOf(t.Date)
}

// AddEntry appends an entry against account. Only drafts accept entries and only
// posting-eligible accounts may be referenced.
func (t *Transaction) AddEntry(account Account, e Entry) (Entry, error) {
	if t.Status != Draft {
		return Entry{}, fmt.Errorf("%w: cannot add entries to a %s transaction", apperrors.ErrInvalidTransition, t.Status)
	}
	if !account.IsPostable() {
		return Entry{}, fmt.Errorf("%w: account %s (%s) does not accept postings", apperrors.ErrInvalidAccount, account.Code, account.Name)
	}
	if err := e.ValidateAmounts(); err != nil {
		return Entry{}, err
	}
	e.TransactionID = t.TransactionID
	e.AccountID = account.AccountID
	e.AccountCode = account.Code
	t.Entries = append(t.Entries, e)
	t.RecalculateTotals()
	return e, nil
}

// RemoveEntry drops an entry from a draft.
func (t *Transaction) RemoveEntry(entryID string) error {
	if t.Status != Draft {
		return fmt.Errorf("%w: cannot remove entries from a %s transaction", apperrors.ErrInvalidTransition, t.Status)
	}
	for i, e := range t.Entries {
		if e.EntryID == entryID {
			t.Entries = append(t.Entries[:i], t.Entries[i+1:]...)
			t.RecalculateTotals()
			return nil
		}
	}
	return apperrors.NewNotFoundError("entry " + entryID + " not found in transaction " + t.TransactionID)
}

// RecalculateTotals recomputes the header totals from the entries.
func (t *Transaction) RecalculateTotals() {
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range t.Entries {
		debit = debit.Add(e.DebitAmount)
		credit = credit.Add(e.CreditAmount)
	}
	t.TotalDebit = debit
	t.TotalCredit = credit
}

// CheckBalanced verifies sum(debit) == sum(credit) == TotalDebit == TotalCredit.
func (t *Transaction) CheckBalanced() error {
	if len(t.Entries) == 0 {
		return fmt.Errorf("%w: transaction %s", apperrors.ErrEmptyTransaction, t.TransactionID)
	}
	debit, credit := decimal.Zero, decimal.Zero
	for _, e := range t.Entries {
		if err := e.ValidateAmounts(); err != nil {
			return err
		}
		debit = debit.Add(e.DebitAmount)
		credit = credit.Add(e.CreditAmount)
	}
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits %s, credits %s", apperrors.ErrUnbalancedTransaction, debit, credit)
	}
	if !t.TotalDebit.Equal(debit) || !t.TotalCredit.Equal(credit) {
		return fmt.Errorf("%w: header totals %s/%s disagree with entries %s/%s", apperrors.ErrUnbalancedTransaction, t.TotalDebit, t.TotalCredit, debit, credit)
	}
	return nil
}

// Post moves a balanced draft to POSTED.
func (t *Transaction) Post(now time.Time) error {
	if t.Status != Draft {
		return fmt.Errorf("%w: cannot post a %s transaction", apperrors.ErrInvalidTransition, t.Status)
	}
	if err := t.CheckBalanced(); err != nil {
		return err
	}
	t.Status = Posted
	t.PostedAt = &now
	return nil
}

// Cancel moves a POSTED transaction to CANCELLED. Cancelled transactions stay stored
// and are excluded from balance queries.
func (t *Transaction) Cancel(now time.Time, reason string) error {
	if t.Status != Posted {
		return fmt.Errorf("%w: only posted transactions can be cancelled, got %s", apperrors.ErrInvalidTransition, t.Status)
	}
	t.Status = Cancelled
	t.CancelledAt = &now
	t.CancelReason = reason
	return nil
}

// AffectedAccountIDs returns each account referenced by the entries once, in entry order.
func (t Transaction) AffectedAccountIDs() []string {
	seen := make(map[string]struct{}, len(t.Entries))
	ids := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		if _, ok := seen[e.AccountID]; ok {
			continue
		}
		seen[e.AccountID] = struct{}{}
		ids = append(ids, e.AccountID)
	}
	return ids
}
