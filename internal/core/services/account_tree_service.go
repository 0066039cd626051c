package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
)

const defaultAccountCacheTTL = 5 * time.Minute

type cachedAccount struct {
	account  domain.Account
	cachedAt time.Time
}

// accountTreeService resolves accounts through a per-tenant read-through cache.
// Only hits are cached, so accounts provisioned later are found on the next lookup.
type accountTreeService struct {
	BaseService
	repo portsrepo.AccountReader
	ttl  time.Duration

	mu     sync.RWMutex
	byCode map[string]cachedAccount // tenantID|code
	byID   map[string]cachedAccount // tenantID|accountID
}

// AccountTreeOption configures the account tree service.
type AccountTreeOption func(*accountTreeService)

// WithAccountCacheTTL sets how long resolved accounts are served from memory. Zero disables caching.
func WithAccountCacheTTL(ttl time.Duration) AccountTreeOption {
	return func(s *accountTreeService) {
		s.ttl = ttl
	}
}

// WithAccountTreeClock overrides the clock used for cache expiry.
func WithAccountTreeClock(clock func() time.Time) AccountTreeOption {
	return func(s *accountTreeService) {
		s.Clock = clock
	}
}

// NewAccountTreeService creates the account tree service.
func NewAccountTreeService(repo portsrepo.AccountReader, opts ...AccountTreeOption) portssvc.AccountTreeSvc {
	s := &accountTreeService{
		repo:   repo,
		ttl:    defaultAccountCacheTTL,
		byCode: make(map[string]cachedAccount),
		byID:   make(map[string]cachedAccount),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.AccountTreeSvc = (*accountTreeService)(nil)

func (s *accountTreeService) lookup(index map[string]cachedAccount, key string) (domain.Account, bool) {
	if s.ttl <= 0 {
		return domain.Account{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := index[key]
	if !ok || s.Now().Sub(c.cachedAt) > s.ttl {
		return domain.Account{}, false
	}
	return c.account, true
}

func (s *accountTreeService) remember(account domain.Account) {
	if s.ttl <= 0 {
		return
	}
	c := cachedAccount{account: account, cachedAt: s.Now()}
	s.mu.Lock()
	s.byCode[account.TenantID+"|"+account.Code] = c
	s.byID[account.TenantID+"|"+account.AccountID] = c
	s.mu.Unlock()
}

// ResolveByCode implements portssvc.AccountTreeSvc.
func (s *accountTreeService) ResolveByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	if tenantID == "" || code == "" {
		return nil, fmt.Errorf("%w: tenant and account code are required", apperrors.ErrValidation)
	}
	if account, ok := s.lookup(s.byCode, tenantID+"|"+code); ok {
		return &account, nil
	}

	account, err := s.repo.FindAccountByCode(ctx, tenantID, code)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by code", slog.String("tenant_id", tenantID), slog.String("code", code))
		}
		return nil, fmt.Errorf("account %s: %w", code, err)
	}
	s.remember(*account)
	return account, nil
}

// ResolveByID implements portssvc.AccountTreeSvc.
func (s *accountTreeService) ResolveByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	if account, ok := s.lookup(s.byID, tenantID+"|"+accountID); ok {
		return &account, nil
	}
	account, err := s.repo.FindAccountByID(ctx, tenantID, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("tenant_id", tenantID), slog.String("account_id", accountID))
		}
		return nil, fmt.Errorf("account %s: %w", accountID, err)
	}
	s.remember(*account)
	return account, nil
}

// ResolvePostable implements portssvc.AccountTreeSvc.
func (s *accountTreeService) ResolvePostable(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	account, err := s.ResolveByCode(ctx, tenantID, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %w", apperrors.ErrInvalidAccount, err)
		}
		return nil, err
	}
	if !s.IsPostable(*account) {
		return nil, fmt.Errorf("%w: account %s (%s) does not accept postings", apperrors.ErrInvalidAccount, account.Code, account.Name)
	}
	return account, nil
}

// ChildrenOf implements portssvc.AccountTreeSvc.
func (s *accountTreeService) ChildrenOf(ctx context.Context, account domain.Account) ([]domain.Account, error) {
	children, err := s.repo.ListChildren(ctx, account.TenantID, account.Code)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child accounts", slog.String("tenant_id", account.TenantID), slog.String("code", account.Code))
		return nil, fmt.Errorf("failed to list children of %s: %w", account.Code, err)
	}
	if children == nil {
		return []domain.Account{}, nil
	}
	return children, nil
}

// IsPostable implements portssvc.AccountTreeSvc.
func (s *accountTreeService) IsPostable(account domain.Account) bool {
	return account.IsPostable()
}
