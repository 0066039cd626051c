package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/propledger/ledgercore/internal/adapters/database/memory"
	"github.com/propledger/ledgercore/internal/core/domain"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
	"github.com/propledger/ledgercore/internal/core/services"
	"github.com/propledger/ledgercore/internal/dto"
)

const testTenant = "tenant-1"

var march2024 = time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testAccount(code, name string, t domain.AccountType, parent string, postable bool) domain.Account {
	level := 1
	switch {
	case len(code) >= 6:
		level = 4
	case len(code) == 4:
		level = 3
	case len(code) == 2:
		level = 2
	}
	return domain.Account{
		AccountID:      "acc-" + code,
		TenantID:       testTenant,
		Code:           code,
		Name:           name,
		AccountType:    t,
		ParentCode:     parent,
		Level:          level,
		NormalBalance:  domain.DefaultNormalBalance(t),
		AcceptsPosting: postable,
		IsActive:       true,
	}
}

func testChart() []domain.Account {
	inactive := testAccount("519595", "Gastos diversos (retirada)", domain.Expense, "51", true)
	inactive.IsActive = false
	return []domain.Account{
		testAccount("1", "Activo", domain.Asset, "", false),
		testAccount("11", "Disponible", domain.Asset, "1", false),
		testAccount("110505", "Caja general", domain.Asset, "11", true),
		testAccount("111005", "Bancos", domain.Asset, "11", true),
		testAccount("13", "Deudores", domain.Asset, "1", false),
		testAccount("130505", "Cuotas de administracion", domain.Asset, "13", true),
		testAccount("130515", "Cuotas extraordinarias", domain.Asset, "13", true),
		testAccount("130520", "Parqueaderos", domain.Asset, "13", true),
		testAccount("130525", "Intereses de mora", domain.Asset, "13", true),
		testAccount("130530", "Servicios publicos", domain.Asset, "13", true),
		testAccount("4", "Ingresos", domain.Income, "", false),
		testAccount("41", "Operacionales", domain.Income, "4", false),
		testAccount("417005", "Ingresos por administracion", domain.Income, "41", true),
		testAccount("417010", "Ingresos extraordinarios", domain.Income, "41", true),
		testAccount("417015", "Ingresos por parqueaderos", domain.Income, "41", true),
		testAccount("417020", "Ingresos por servicios", domain.Income, "41", true),
		testAccount("421005", "Intereses de mora", domain.Income, "4", true),
		testAccount("5", "Gastos", domain.Expense, "", false),
		testAccount("51", "Operacionales de administracion", domain.Expense, "5", false),
		testAccount("513525", "Mantenimiento", domain.Expense, "51", true),
		inactive,
	}
}

type testEnv struct {
	store *memory.Store
	svc   *portssvc.ServiceContainer
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewStore()
	_, err := store.SaveAccounts(context.Background(), testChart())
	require.NoError(t, err)
	store.PutMapping(domain.AccountMapping{
		MappingID: "m-bank", TenantID: testTenant, Kind: domain.MappingPaymentMethod,
		Key: "bank_transfer", CashCode: "111005", IsActive: true,
	})
	store.PutMapping(domain.AccountMapping{
		MappingID: "m-cash", TenantID: testTenant, Kind: domain.MappingPaymentMethod,
		Key: "cash", CashCode: "110505", IsActive: true,
	})
	return &testEnv{
		store: store,
		svc:   services.NewContainer(store.Provider(), services.Options{}),
	}
}

func (e *testEnv) balance(t *testing.T, code string) decimal.Decimal {
	t.Helper()
	account, err := e.svc.AccountTree.ResolveByCode(context.Background(), testTenant, code)
	require.NoError(t, err)
	bal, err := e.svc.Ledger.AccountBalance(context.Background(), testTenant, account.AccountID,
		time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	return bal
}

func (e *testEnv) post(t *testing.T, date time.Time, debitCode, creditCode, amount string) *domain.Transaction {
	t.Helper()
	txn, err := e.svc.Ledger.RecordBalanced(context.Background(), dto.CreateTransactionRequest{
		TenantID:    testTenant,
		Date:        date,
		Description: "manual posting",
		CreatedBy:   "user-1",
	}, []dto.AddEntryRequest{
		{AccountCode: debitCode, DebitAmount: dec(amount)},
		{AccountCode: creditCode, CreditAmount: dec(amount)},
	})
	require.NoError(t, err)
	return txn
}
