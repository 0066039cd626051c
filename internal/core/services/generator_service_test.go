package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
)

func seedInvoice(env *testEnv) domain.Invoice {
	invoice := domain.Invoice{
		InvoiceID:   "inv-1",
		TenantID:    testTenant,
		Number:      "FV-0001",
		ApartmentID: "apt-101",
		IssueDate:   march2024,
		DueDate:     march2024.AddDate(0, 0, 15),
		Total:       dec("300000"),
		Items: []domain.InvoiceItem{
			{ItemID: "i1", ConceptID: "c-admin", ConceptType: domain.ConceptAdministration, Description: "Administracion", Amount: dec("200000")},
			{ItemID: "i2", ConceptID: "c-park", ConceptType: domain.ConceptParking, Description: "Parqueadero", Amount: dec("100000")},
		},
	}
	env.store.PutInvoice(invoice)
	return invoice
}

func countByReference(t *testing.T, env *testEnv, ref domain.Reference, period string) int {
	t.Helper()
	txns, err := env.svc.Ledger.FindByReference(context.Background(), testTenant, ref, period)
	require.NoError(t, err)
	return len(txns)
}

func TestInvoiceAndPaymentScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedInvoice(env)

	result, err := env.svc.Generators.HandleInvoiceCreated(ctx, domain.InvoiceCreated{TenantID: testTenant, InvoiceID: "inv-1"})
	require.NoError(t, err)
	assert.False(t, result.Duplicate)
	assert.Len(t, result.TransactionIDs, 2)

	assert.True(t, env.balance(t, "130505").Equal(dec("200000")))
	assert.True(t, env.balance(t, "130520").Equal(dec("100000")))
	assert.True(t, env.balance(t, "417005").Equal(dec("200000")))
	assert.True(t, env.balance(t, "417015").Equal(dec("100000")))

	txn, err := env.svc.Ledger.GetTransaction(ctx, testTenant, result.TransactionIDs[0])
	require.NoError(t, err)
	assert.Equal(t, domain.Posted, txn.Status)
	require.Len(t, txn.Entries, 2)
	require.NotNil(t, txn.Entries[0].ThirdParty)
	assert.Equal(t, "apt-101", txn.Entries[0].ThirdParty.ID)

	payment := domain.Payment{
		PaymentID:  "pay-1",
		TenantID:   testTenant,
		InvoiceID:  "inv-1",
		Amount:     dec("150000"),
		Method:     "bank_transfer",
		ReceivedAt: march2024.AddDate(0, 0, 5),
	}
	payResult, err := env.svc.Generators.HandlePaymentReceived(ctx, domain.PaymentReceived{TenantID: testTenant, Payment: payment})
	require.NoError(t, err)
	assert.Len(t, payResult.TransactionIDs, 2)

	assert.True(t, env.balance(t, "111005").Equal(dec("150000")))
	assert.True(t, env.balance(t, "130505").Equal(dec("100000")), "200000 - 100000 allocated")
	assert.True(t, env.balance(t, "130520").Equal(dec("50000")), "100000 - 50000 allocated")

	// redelivery of both events adds nothing
	again, err := env.svc.Generators.HandleInvoiceCreated(ctx, domain.InvoiceCreated{TenantID: testTenant, InvoiceID: "inv-1"})
	require.NoError(t, err)
	assert.True(t, again.Duplicate)
	assert.ElementsMatch(t, result.TransactionIDs, again.TransactionIDs)

	payAgain, err := env.svc.Generators.HandlePaymentReceived(ctx, domain.PaymentReceived{TenantID: testTenant, Payment: payment})
	require.NoError(t, err)
	assert.True(t, payAgain.Duplicate)

	assert.Equal(t, 2, countByReference(t, env, domain.Reference{Type: domain.ReferenceInvoice, ID: "inv-1"}, ""))
	assert.Equal(t, 2, countByReference(t, env, domain.Reference{Type: domain.ReferencePayment, ID: "pay-1"}, ""))
	assert.True(t, env.balance(t, "111005").Equal(dec("150000")))
}

func TestPaymentReceived_ConcurrentRedeliveryPostsOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedInvoice(env)
	_, err := env.svc.Generators.HandleInvoiceCreated(ctx, domain.InvoiceCreated{TenantID: testTenant, InvoiceID: "inv-1"})
	require.NoError(t, err)

	evt := domain.PaymentReceived{TenantID: testTenant, Payment: domain.Payment{
		PaymentID: "pay-c", TenantID: testTenant, InvoiceID: "inv-1", Amount: dec("150000"),
		Method: "bank_transfer", ReceivedAt: march2024.AddDate(0, 0, 5),
	}}

	const deliveries = 8
	results := make([]*domain.GenerationResult, deliveries)
	errs := make([]error, deliveries)
	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.svc.Generators.HandlePaymentReceived(ctx, evt)
		}(i)
	}
	wg.Wait()

	generated := 0
	for i := range results {
		require.NoError(t, errs[i])
		if !results[i].Duplicate {
			generated++
			assert.Len(t, results[i].TransactionIDs, 2)
		}
	}
	assert.Equal(t, 1, generated)
	assert.Equal(t, 2, countByReference(t, env, domain.Reference{Type: domain.ReferencePayment, ID: "pay-c"}, ""))
	assert.True(t, env.balance(t, "111005").Equal(dec("150000")))
	assert.True(t, env.balance(t, "130505").Equal(dec("100000")))
}

func TestPaymentAllocation_ResidualCentGoesToLastGroup(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.PutInvoice(domain.Invoice{
		InvoiceID: "inv-3", TenantID: testTenant, Number: "FV-3", IssueDate: march2024, Total: dec("300"),
		Items: []domain.InvoiceItem{
			{ItemID: "a", ConceptID: "c-admin", ConceptType: domain.ConceptAdministration, Amount: dec("100")},
			{ItemID: "b", ConceptID: "c-ext", ConceptType: domain.ConceptExtraordinaryFee, Amount: dec("100")},
			{ItemID: "c", ConceptID: "c-park", ConceptType: domain.ConceptParking, Amount: dec("100")},
		},
	})

	_, err := env.svc.Generators.HandlePaymentReceived(ctx, domain.PaymentReceived{TenantID: testTenant, Payment: domain.Payment{
		PaymentID: "pay-3", InvoiceID: "inv-3", Amount: dec("100"), Method: "cash", ReceivedAt: march2024,
	}})
	require.NoError(t, err)

	assert.True(t, env.balance(t, "130505").Equal(dec("-33.33")))
	assert.True(t, env.balance(t, "130515").Equal(dec("-33.33")))
	assert.True(t, env.balance(t, "130520").Equal(dec("-33.34")))
	assert.True(t, env.balance(t, "110505").Equal(dec("100")))
}

func TestInvoiceWithoutItems_UsesUnassignedDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.store.PutInvoice(domain.Invoice{
		InvoiceID: "inv-legacy", TenantID: testTenant, Number: "FV-OLD", IssueDate: march2024, Total: dec("50000"),
	})

	result, err := env.svc.Generators.HandleInvoiceCreated(context.Background(), domain.InvoiceCreated{TenantID: testTenant, InvoiceID: "inv-legacy"})
	require.NoError(t, err)
	assert.Len(t, result.TransactionIDs, 1)
	assert.True(t, env.balance(t, "130505").Equal(dec("50000")))
	assert.True(t, env.balance(t, "417005").Equal(dec("50000")))
}

func TestInvoice_TenantMappingOverridesDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.store.PutMapping(domain.AccountMapping{
		MappingID: "m-admin", TenantID: testTenant, Kind: domain.MappingConcept,
		Key: "c-admin", ReceivableCode: "130515", IncomeCode: "417010", IsActive: true,
	})
	seedInvoice(env)

	_, err := env.svc.Generators.HandleInvoiceCreated(context.Background(), domain.InvoiceCreated{TenantID: testTenant, InvoiceID: "inv-1"})
	require.NoError(t, err)
	assert.True(t, env.balance(t, "130515").Equal(dec("200000")))
	assert.True(t, env.balance(t, "130505").IsZero())
}

func TestInvoice_MissingMappingRollsBackEveryGroup(t *testing.T) {
	env := newTestEnv(t)
	env.store.PutMapping(domain.AccountMapping{
		MappingID: "m-park", TenantID: testTenant, Kind: domain.MappingConcept,
		Key: "c-park", ReceivableCode: "139999", IncomeCode: "417015", IsActive: true,
	})
	seedInvoice(env)

	_, err := env.svc.Generators.HandleInvoiceCreated(context.Background(), domain.InvoiceCreated{TenantID: testTenant, InvoiceID: "inv-1"})
	require.ErrorIs(t, err, apperrors.ErrMissingAccountMapping)
	assert.Equal(t, apperrors.KindRetryable, apperrors.KindOf(err))

	assert.Zero(t, countByReference(t, env, domain.Reference{Type: domain.ReferenceInvoice, ID: "inv-1"}, ""))
	assert.True(t, env.balance(t, "130505").IsZero())
	assert.Empty(t, env.store.PendingEvents())
}

func TestPayment_UnknownMethodIsMissingMapping(t *testing.T) {
	env := newTestEnv(t)
	seedInvoice(env)

	_, err := env.svc.Generators.HandlePaymentReceived(context.Background(), domain.PaymentReceived{TenantID: testTenant, Payment: domain.Payment{
		PaymentID: "pay-x", InvoiceID: "inv-1", Amount: dec("1000"), Method: "crypto", ReceivedAt: march2024,
	}})
	require.ErrorIs(t, err, apperrors.ErrMissingAccountMapping)
	assert.Equal(t, apperrors.KindRetryable, apperrors.KindOf(err))
	assert.Zero(t, countByReference(t, env, domain.Reference{Type: domain.ReferencePayment, ID: "pay-x"}, ""))
}

func TestPayment_NonPositiveAmountIsFatal(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Generators.HandlePaymentReceived(context.Background(), domain.PaymentReceived{TenantID: testTenant, Payment: domain.Payment{
		PaymentID: "pay-0", InvoiceID: "inv-1", Amount: dec("0"), Method: "cash",
	}})
	require.ErrorIs(t, err, apperrors.ErrInvalidAmount)
	assert.Equal(t, apperrors.KindFatal, apperrors.KindOf(err))
}

func TestGenerators_MissingInvoiceIsRetryable(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Generators.HandleInvoiceCreated(context.Background(), domain.InvoiceCreated{TenantID: testTenant, InvoiceID: "nope"})
	require.ErrorIs(t, err, apperrors.ErrSourceRecordMissing)
	assert.Equal(t, apperrors.KindRetryable, apperrors.KindOf(err))
}

func TestLateFee_IdempotentPerInvoiceAndMonth(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	seedInvoice(env)

	evt := domain.LateFeeApplied{
		TenantID: testTenant, InvoiceID: "inv-1", Period: "2024-04", Amount: dec("4500"),
		AppliedAt: time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC),
	}
	first, err := env.svc.Generators.HandleLateFeeApplied(ctx, evt)
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := env.svc.Generators.HandleLateFeeApplied(ctx, evt)
	require.NoError(t, err)
	assert.True(t, second.Duplicate)

	evt.Period = "2024-05"
	evt.AppliedAt = time.Date(2024, time.May, 1, 0, 0, 0, 0, time.UTC)
	third, err := env.svc.Generators.HandleLateFeeApplied(ctx, evt)
	require.NoError(t, err)
	assert.False(t, third.Duplicate)

	ref := domain.Reference{Type: domain.ReferenceLateFee, ID: "inv-1"}
	assert.Equal(t, 1, countByReference(t, env, ref, "2024-04"))
	assert.Equal(t, 2, countByReference(t, env, ref, ""))
	assert.True(t, env.balance(t, "130525").Equal(dec("9000")))
	assert.True(t, env.balance(t, "421005").Equal(dec("9000")))
}

func TestLateFee_InvalidPeriodIsFatal(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Generators.HandleLateFeeApplied(context.Background(), domain.LateFeeApplied{
		TenantID: testTenant, InvoiceID: "inv-1", Period: "April", Amount: dec("10"),
	})
	require.Error(t, err)
	assert.Equal(t, apperrors.KindFatal, apperrors.KindOf(err))
}
