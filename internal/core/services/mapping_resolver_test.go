package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/core/services"
)

func TestResolveForConcept(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.PutMapping(domain.AccountMapping{
		MappingID: "m-1", TenantID: testTenant, Kind: domain.MappingConcept,
		Key: "c-special", ReceivableCode: "130530", IncomeCode: "417020", IsActive: true,
	})
	env.store.PutMapping(domain.AccountMapping{
		MappingID: "m-2", TenantID: testTenant, Kind: domain.MappingConcept,
		Key: "c-half", ReceivableCode: "130530", IsActive: true,
	})

	tests := []struct {
		name        string
		conceptID   string
		conceptType domain.ConceptType
		receivable  string
		income      string
		source      string
	}{
		{"explicit mapping wins", "c-special", domain.ConceptAdministration, "130530", "417020", domain.MappingSourceTenant},
		{"no mapping falls back to type", "c-unknown", domain.ConceptParking, "130520", "417015", domain.MappingSourceDefault},
		{"incomplete mapping falls back to type", "c-half", domain.ConceptExtraordinaryFee, "130515", "417010", domain.MappingSourceDefault},
		{"late fee by type", "", domain.ConceptLateFee, "130525", "421005", domain.MappingSourceDefault},
		{"unassigned legacy arm", "", domain.ConceptUnassigned, "130505", "417005", domain.MappingSourceDefault},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.svc.Mapping.ResolveForConcept(ctx, testTenant, tc.conceptID, tc.conceptType)
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tc.receivable, got.Receivable.Code)
			assert.Equal(t, tc.income, got.Income.Code)
			assert.Equal(t, tc.source, got.Source)
		})
	}
}

func TestResolveForConcept_UnknownTypeReturnsNil(t *testing.T) {
	env := newTestEnv(t)
	got, err := env.svc.Mapping.ResolveForConcept(context.Background(), testTenant, "", domain.ConceptType("gym"))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolveCashAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	account, err := env.svc.Mapping.ResolveCashAccount(ctx, testTenant, " Bank_Transfer ")
	require.NoError(t, err)
	assert.Equal(t, "111005", account.Code)

	_, err = env.svc.Mapping.ResolveCashAccount(ctx, testTenant, "cheque")
	assert.ErrorIs(t, err, apperrors.ErrMissingAccountMapping)

	_, err = env.svc.Mapping.ResolveCashAccount(ctx, testTenant, "")
	assert.ErrorIs(t, err, apperrors.ErrMissingAccountMapping)

	env.store.PutMapping(domain.AccountMapping{
		MappingID: "m-group", TenantID: testTenant, Kind: domain.MappingPaymentMethod,
		Key: "card", CashCode: "11", IsActive: true,
	})
	_, err = env.svc.Mapping.ResolveCashAccount(ctx, testTenant, "card")
	assert.ErrorIs(t, err, apperrors.ErrMissingAccountMapping)
	assert.ErrorIs(t, err, apperrors.ErrInvalidAccount)
}

func TestParseDefaultMappings(t *testing.T) {
	m, err := services.LoadDefaultMappings("")
	require.NoError(t, err)
	codes, ok := m.ForConcept(domain.ConceptAdministration)
	require.True(t, ok)
	assert.Equal(t, "130505", codes.Receivable)

	_, err = services.ParseDefaultMappings([]byte("concepts:\n  gym: {receivable: '1', income: '2'}\n"))
	assert.ErrorContains(t, err, "unknown concept type")

	_, err = services.ParseDefaultMappings([]byte("concepts:\n  parking: {receivable: '1'}\n"))
	assert.ErrorContains(t, err, "needs both")

	_, err = services.ParseDefaultMappings([]byte("concepts:\n  parking: {receivable: '1', income: '2'}\n"))
	assert.ErrorContains(t, err, "unassigned")

	_, err = services.LoadDefaultMappings("/nonexistent/mappings.yaml")
	assert.Error(t, err)
}
