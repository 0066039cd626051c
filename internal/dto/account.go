package dto

import "github.com/propledger/ledgercore/internal/core/domain"

// AccountResponse defines the data returned for a chart-of-accounts node.
type AccountResponse struct {
	AccountID      string `json:"accountID"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	AccountType    string `json:"accountType"`
	ParentCode     string `json:"parentCode,omitempty"`
	Level          int    `json:"level"`
	NormalBalance  string `json:"normalBalance"`
	AcceptsPosting bool   `json:"acceptsPosting"`
	IsActive       bool   `json:"isActive"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO.
func ToAccountResponse(a domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:      a.AccountID,
		Code:           a.Code,
		Name:           a.Name,
		AccountType:    string(a.AccountType),
		ParentCode:     a.ParentCode,
		Level:          a.Level,
		NormalBalance:  string(a.NormalBalance),
		AcceptsPosting: a.AcceptsPosting,
		IsActive:       a.IsActive,
	}
}

// ToAccountResponses converts a slice of domain.Account.
func ToAccountResponses(accounts []domain.Account) []AccountResponse {
	out := make([]AccountResponse, len(accounts))
	for i, a := range accounts {
		out[i] = ToAccountResponse(a)
	}
	return out
}
