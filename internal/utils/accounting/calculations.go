package accounting

import (
	"fmt"

	"github.com/propledger/ledgercore/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SignedAmount returns the effect of an entry on an account's balance:
// positive when it increases the account on its normal side, negative otherwise.
func SignedAmount(entry domain.Entry, normal domain.NormalBalance) (decimal.Decimal, error) {
	switch normal {
	case domain.DebitNormal:
		return entry.DebitAmount.Sub(entry.CreditAmount), nil
	case domain.CreditNormal:
		return entry.CreditAmount.Sub(entry.DebitAmount), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown normal balance '%s' encountered for account ID %s", normal, entry.AccountID)
	}
}

// NetBalance sums the signed effect of entries on one account.
func NetBalance(entries []domain.Entry, normal domain.NormalBalance) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, e := range entries {
		signed, err := SignedAmount(e, normal)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(signed)
	}
	return total, nil
}
