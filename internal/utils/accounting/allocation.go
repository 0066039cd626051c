package accounting

import (
	"errors"
	"fmt"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ErrNothingToAllocate is returned when the weights sum to zero or less.
var ErrNothingToAllocate = errors.New("allocation weights must sum to a positive amount")

// Allocate splits amount across weights in proportion to each weight's share of their sum.
// Every share but the last is computed exactly and truncated to the money scale;
// the last share takes the residual so the result always sums to amount exactly.
// Non-positive weights receive zero and never absorb the residual.
func Allocate(amount decimal.Decimal, weights []decimal.Decimal) ([]decimal.Decimal, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("cannot allocate negative amount %s", amount)
	}
	if !amount.Equal(amount.Truncate(domain.MoneyScale)) {
		return nil, fmt.Errorf("amount %s exceeds %d decimal places", amount, domain.MoneyScale)
	}

	total := decimal.Zero
	last := -1
	for i, w := range weights {
		if w.IsPositive() {
			total = total.Add(w)
			last = i
		}
	}
	if last < 0 || !total.IsPositive() {
		return nil, ErrNothingToAllocate
	}

	shares := make([]decimal.Decimal, len(weights))
	allocated := decimal.Zero
	for i, w := range weights {
		switch {
		case !w.IsPositive():
			shares[i] = decimal.Zero
		case i == last:
			shares[i] = amount.Sub(allocated)
		default:
			// Multiply before dividing; QuoRem truncates exactly at the money scale.
			share, _ := amount.Mul(w).QuoRem(total, domain.MoneyScale)
			shares[i] = share
			allocated = allocated.Add(share)
		}
	}
	return shares, nil
}
