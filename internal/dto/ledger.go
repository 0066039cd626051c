package dto

import (
	"time"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransactionRequest describes a new draft transaction.
type CreateTransactionRequest struct {
	TenantID    string            `json:"tenantID" validate:"required"`
	Date        time.Time         `json:"date" validate:"required"`
	Description string            `json:"description" validate:"required"`
	Reference   domain.Reference  `json:"reference"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	PostingKey  string            `json:"postingKey,omitempty"` // defaults to a fresh unique key
	CreatedBy   string            `json:"createdBy" validate:"required"`
}

// AddEntryRequest describes one entry. The account is addressed by code.
type AddEntryRequest struct {
	AccountCode  string             `json:"accountCode" validate:"required"`
	DebitAmount  decimal.Decimal    `json:"debitAmount"`
	CreditAmount decimal.Decimal    `json:"creditAmount"`
	Description  string             `json:"description"`
	ThirdParty   *domain.ThirdParty `json:"thirdParty,omitempty"`
}

// EntryResponse defines the data returned for an entry.
type EntryResponse struct {
	EntryID       string             `json:"entryID"`
	TransactionID string             `json:"transactionID"`
	AccountID     string             `json:"accountID"`
	AccountCode   string             `json:"accountCode"`
	DebitAmount   decimal.Decimal    `json:"debitAmount"`
	CreditAmount  decimal.Decimal    `json:"creditAmount"`
	Description   string             `json:"description"`
	ThirdParty    *domain.ThirdParty `json:"thirdParty,omitempty"`
}

// TransactionResponse defines the data returned for a transaction.
type TransactionResponse struct {
	TransactionID string            `json:"transactionID"`
	Date          time.Time         `json:"date"`
	Description   string            `json:"description"`
	Reference     domain.Reference  `json:"reference"`
	Status        string            `json:"status"`
	TotalDebit    decimal.Decimal   `json:"totalDebit"`
	TotalCredit   decimal.Decimal   `json:"totalCredit"`
	Metadata      map[string]string `json:"metadata,omitempty"`
	PostedAt      *time.Time        `json:"postedAt,omitempty"`
	CancelledAt   *time.Time        `json:"cancelledAt,omitempty"`
	CreatedBy     string            `json:"createdBy"`
	Entries       []EntryResponse   `json:"entries"`
}

// ToEntryResponse converts a domain.Entry to EntryResponse DTO.
func ToEntryResponse(e domain.Entry) EntryResponse {
	return EntryResponse{
		EntryID:       e.EntryID,
		TransactionID: e.TransactionID,
		AccountID:     e.AccountID,
		AccountCode:   e.AccountCode,
		DebitAmount:   e.DebitAmount,
		CreditAmount:  e.CreditAmount,
		Description:   e.Description,
		ThirdParty:    e.ThirdParty,
	}
}

// ToEntryResponses converts a slice of domain.Entry.
func ToEntryResponses(entries []domain.Entry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = ToEntryResponse(e)
	}
	return responses
}

// ToTransactionResponse converts a domain.Transaction to TransactionResponse DTO.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID: t.TransactionID,
		Date:          t.Date,
		Description:   t.Description,
		Reference:     t.Reference,
		Status:        string(t.Status),
		TotalDebit:    t.TotalDebit,
		TotalCredit:   t.TotalCredit,
		Metadata:      t.Metadata,
		PostedAt:      t.PostedAt,
		CancelledAt:   t.CancelledAt,
		CreatedBy:     t.CreatedBy,
		Entries:       ToEntryResponses(t.Entries),
	}
}

// AccountBalanceQuery holds the date range of a balance query. To is exclusive.
type AccountBalanceQuery struct {
	From time.Time `form:"from" time_format:"2006-01-02" time_utc:"1" binding:"required"`
	To   time.Time `form:"to" time_format:"2006-01-02" time_utc:"1" binding:"required,gtfield=From"`
}

// AccountBalanceResponse is the balance of one account over a date range.
type AccountBalanceResponse struct {
	AccountCode   string          `json:"accountCode"`
	AccountName   string          `json:"accountName"`
	NormalBalance string          `json:"normalBalance"`
	From          time.Time       `json:"from"`
	To            time.Time       `json:"to"`
	Balance       decimal.Decimal `json:"balance"`
}

// ListEntriesParams defines parameters for listing posted entries of an account.
type ListEntriesParams struct {
	Limit     int     `form:"limit" binding:"omitempty,min=1,max=200"`
	NextToken *string `form:"nextToken"`
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries   []EntryResponse `json:"entries"`
	NextToken *string         `json:"nextToken,omitempty"`
}
