package accounting_test

import (
	"testing"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/propledger/ledgercore/internal/utils/accounting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedAmount(t *testing.T) {
	d := domain.Entry{DebitAmount: decimal.NewFromInt(100)}
	c := domain.Entry{CreditAmount: decimal.NewFromInt(40)}

	got, err := accounting.SignedAmount(d, domain.DebitNormal)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(100)))

	got, err = accounting.SignedAmount(d, domain.CreditNormal)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(-100)))

	got, err = accounting.SignedAmount(c, domain.CreditNormal)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(40)))

	_, err = accounting.SignedAmount(c, domain.NormalBalance("SIDEWAYS"))
	assert.Error(t, err)
}

func TestNetBalance(t *testing.T) {
	entries := []domain.Entry{
		{DebitAmount: decimal.NewFromInt(300)},
		{CreditAmount: decimal.NewFromInt(120)},
		{DebitAmount: decimal.RequireFromString("0.50")},
	}
	got, err := accounting.NetBalance(entries, domain.DebitNormal)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.RequireFromString("180.50")))
}
