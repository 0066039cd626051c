package provisioning

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propledger/ledgercore/internal/apperrors"
)

func TestReadBudgetPlan(t *testing.T) {
	plan, err := ReadBudgetPlan(strings.NewReader(`
year: 2024
lines:
  - account: "513525"
    month: 3
    amount: "1000.00"
  - account: " 514510 "
    month: 4
    amount: "250.5"
`))
	require.NoError(t, err)
	assert.Equal(t, 2024, plan.Year)
	require.Len(t, plan.Lines, 2)
	assert.Equal(t, "513525", plan.Lines[0].AccountCode)
	assert.Equal(t, 3, plan.Lines[0].Month)
	assert.True(t, decimal.RequireFromString("1000").Equal(plan.Lines[0].BudgetedAmount))
	assert.Equal(t, "514510", plan.Lines[1].AccountCode)
	assert.True(t, decimal.RequireFromString("250.50").Equal(plan.Lines[1].BudgetedAmount))
}

func TestReadBudgetPlan_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"empty", ""},
		{"bad amount", "year: 2024\nlines:\n  - account: \"513525\"\n    month: 3\n    amount: \"ten\"\n"},
		{"unknown field", "year: 2024\nbudget: []\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadBudgetPlan(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
		})
	}
}
