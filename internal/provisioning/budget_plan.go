package provisioning

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
)

// BudgetPlan is an approved yearly budget as written by the finance team.
//
//	year: 2024
//	lines:
//	  - account: "513525"
//	    month: 3
//	    amount: "1000.00"
type BudgetPlan struct {
	Year  int
	Lines []domain.BudgetLine
}

type budgetPlanFile struct {
	Year  int `yaml:"year"`
	Lines []struct {
		Account string `yaml:"account"`
		Month   int    `yaml:"month"`
		Amount  string `yaml:"amount"`
	} `yaml:"lines"`
}

// ReadBudgetPlan parses a YAML budget plan. Amounts are quoted decimals.
func ReadBudgetPlan(r io.Reader) (*BudgetPlan, error) {
	var file budgetPlanFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: budget plan is empty", apperrors.ErrValidation)
		}
		return nil, fmt.Errorf("%w: parsing budget plan: %v", apperrors.ErrValidation, err)
	}

	plan := &BudgetPlan{Year: file.Year, Lines: make([]domain.BudgetLine, 0, len(file.Lines))}
	for i, l := range file.Lines {
		amount, err := decimal.NewFromString(strings.TrimSpace(l.Amount))
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: amount %q: %v", apperrors.ErrValidation, i+1, l.Amount, err)
		}
		plan.Lines = append(plan.Lines, domain.BudgetLine{
			AccountCode:    strings.TrimSpace(l.Account),
			Month:          l.Month,
			BudgetedAmount: amount,
		})
	}
	return plan, nil
}
