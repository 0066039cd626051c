package memory

import (
	"context"
	"sort"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

var _ portsrepo.AccountRepositoryFacade = (*Store)(nil)

// FindAccountByCode implements portsrepo.AccountReader.
func (s *Store) FindAccountByCode(_ context.Context, tenantID, code string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.accountCodes[tenantKey(tenantID, code)]
	if !ok {
		return nil, apperrors.NewNotFoundError("account with code " + code + " not found")
	}
	account := s.accounts[tenantKey(tenantID, id)]
	return &account, nil
}

// FindAccountByID implements portsrepo.AccountReader.
func (s *Store) FindAccountByID(_ context.Context, tenantID, accountID string) (*domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	account, ok := s.accounts[tenantKey(tenantID, accountID)]
	if !ok {
		return nil, apperrors.NewNotFoundError("account " + accountID + " not found")
	}
	return &account, nil
}

// FindAccountsByIDs implements portsrepo.AccountReader.
func (s *Store) FindAccountsByIDs(_ context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	found := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if account, ok := s.accounts[tenantKey(tenantID, id)]; ok {
			found[id] = account
		}
	}
	return found, nil
}

// ListChildren implements portsrepo.AccountReader.
func (s *Store) ListChildren(_ context.Context, tenantID, parentCode string) ([]domain.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	children := make([]domain.Account, 0)
	for _, account := range s.accounts {
		if account.TenantID == tenantID && account.ParentCode == parentCode {
			children = append(children, account)
		}
	}
	sort.Slice(children, func(i, j int) bool { return children[i].Code < children[j].Code })
	return children, nil
}

// SaveAccounts implements portsrepo.AccountWriter.
func (s *Store) SaveAccounts(_ context.Context, accounts []domain.Account) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inserted := 0
	for _, account := range accounts {
		codeKey := tenantKey(account.TenantID, account.Code)
		if _, exists := s.accountCodes[codeKey]; exists {
			continue
		}
		s.accounts[tenantKey(account.TenantID, account.AccountID)] = account
		s.accountCodes[codeKey] = account.AccountID
		inserted++
	}
	return inserted, nil
}
