package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	"github.com/propledger/ledgercore/internal/core/services"
)

// --- Mock AccountReader ---
type MockAccountReader struct {
	mock.Mock
}

var _ portsrepo.AccountReader = (*MockAccountReader)(nil)

func (m *MockAccountReader) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tenantID, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountReader) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tenantID, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountReader) ListChildren(ctx context.Context, tenantID, parentCode string) ([]domain.Account, error) {
	args := m.Called(ctx, tenantID, parentCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func TestAccountTree_CachesHits(t *testing.T) {
	repo := new(MockAccountReader)
	ctx := context.Background()
	account := testAccount("513525", "Mantenimiento", domain.Expense, "51", true)
	repo.On("FindAccountByCode", ctx, testTenant, "513525").Return(&account, nil).Once()

	tree := services.NewAccountTreeService(repo)
	for i := 0; i < 3; i++ {
		got, err := tree.ResolveByCode(ctx, testTenant, "513525")
		require.NoError(t, err)
		assert.Equal(t, account.AccountID, got.AccountID)
	}

	// the same account is also served by ID without another lookup
	got, err := tree.ResolveByID(ctx, testTenant, account.AccountID)
	require.NoError(t, err)
	assert.Equal(t, "513525", got.Code)
	repo.AssertExpectations(t)
}

func TestAccountTree_CacheExpires(t *testing.T) {
	repo := new(MockAccountReader)
	ctx := context.Background()
	account := testAccount("513525", "Mantenimiento", domain.Expense, "51", true)
	repo.On("FindAccountByCode", ctx, testTenant, "513525").Return(&account, nil).Twice()

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tree := services.NewAccountTreeService(repo,
		services.WithAccountCacheTTL(time.Minute),
		services.WithAccountTreeClock(func() time.Time { return now }))

	_, err := tree.ResolveByCode(ctx, testTenant, "513525")
	require.NoError(t, err)
	now = now.Add(2 * time.Minute)
	_, err = tree.ResolveByCode(ctx, testTenant, "513525")
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAccountTree_UnknownCodeIsNotDefaulted(t *testing.T) {
	repo := new(MockAccountReader)
	ctx := context.Background()
	repo.On("FindAccountByCode", ctx, testTenant, "000000").Return(nil, apperrors.NewNotFoundError("missing")).Twice()

	tree := services.NewAccountTreeService(repo)
	_, err := tree.ResolveByCode(ctx, testTenant, "000000")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = tree.ResolvePostable(ctx, testTenant, "000000")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	repo.AssertExpectations(t)
}

func TestAccountTree_ResolvePostableRejectsGroups(t *testing.T) {
	repo := new(MockAccountReader)
	ctx := context.Background()
	group := testAccount("51", "Operacionales de administracion", domain.Expense, "5", false)
	repo.On("FindAccountByCode", ctx, testTenant, "51").Return(&group, nil).Once()

	tree := services.NewAccountTreeService(repo)
	_, err := tree.ResolvePostable(ctx, testTenant, "51")
	assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)
	assert.False(t, tree.IsPostable(group))
}

func TestAccountTree_ChildrenOf(t *testing.T) {
	repo := new(MockAccountReader)
	ctx := context.Background()
	parent := testAccount("51", "Operacionales de administracion", domain.Expense, "5", false)
	children := []domain.Account{testAccount("513525", "Mantenimiento", domain.Expense, "51", true)}
	repo.On("ListChildren", ctx, testTenant, "51").Return(children, nil).Once()
	repo.On("ListChildren", ctx, testTenant, "513525").Return(nil, errors.New("connection reset")).Once()

	tree := services.NewAccountTreeService(repo)
	got, err := tree.ChildrenOf(ctx, parent)
	require.NoError(t, err)
	assert.Equal(t, children, got)

	_, err = tree.ChildrenOf(ctx, children[0])
	assert.Error(t, err)
	repo.AssertExpectations(t)
}
