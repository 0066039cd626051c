// Package provisioning loads chart-of-accounts templates into a tenant.
package provisioning

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

//go:embed chart_template.csv
var chartTemplateCSV []byte

const (
	numFields        = 7
	colCode          = 0
	colName          = 1
	colType          = 2
	colParent        = 3
	colLevel         = 4
	colAcceptsPost   = 5
	colNormalBalance = 6
)

// ChartRow is one line of a chart template.
type ChartRow struct {
	Code           string
	Name           string
	Type           domain.AccountType
	ParentCode     string
	Level          int
	AcceptsPosting bool
	// NormalBalance is empty when the type's conventional side applies.
	NormalBalance domain.NormalBalance
}

// ReadChart reads a chart template CSV with a header row.
func ReadChart(r io.Reader) ([]ChartRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chart CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	rows := make([]ChartRow, 0, len(records)-1)
	for i, rec := range records[1:] {
		row, err := unmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func unmarshalRow(rec []string) (ChartRow, error) {
	row := ChartRow{
		Code:          strings.TrimSpace(rec[colCode]),
		Name:          strings.TrimSpace(rec[colName]),
		Type:          domain.AccountType(strings.ToUpper(strings.TrimSpace(rec[colType]))),
		ParentCode:    strings.TrimSpace(rec[colParent]),
		NormalBalance: domain.NormalBalance(strings.ToUpper(strings.TrimSpace(rec[colNormalBalance]))),
	}
	if row.Code == "" || row.Name == "" {
		return ChartRow{}, fmt.Errorf("code and name are required")
	}
	if !row.Type.Valid() {
		return ChartRow{}, fmt.Errorf("account %s: invalid type %q", row.Code, rec[colType])
	}
	switch row.NormalBalance {
	case "", domain.DebitNormal, domain.CreditNormal:
	default:
		return ChartRow{}, fmt.Errorf("account %s: invalid normal balance %q", row.Code, rec[colNormalBalance])
	}
	level, err := strconv.Atoi(strings.TrimSpace(rec[colLevel]))
	if err != nil {
		return ChartRow{}, fmt.Errorf("account %s: level: %w", row.Code, err)
	}
	row.Level = level
	accepts, err := strconv.ParseBool(strings.TrimSpace(rec[colAcceptsPost]))
	if err != nil {
		return ChartRow{}, fmt.Errorf("account %s: accepts_posting: %w", row.Code, err)
	}
	row.AcceptsPosting = accepts
	return row, nil
}

// DefaultChart returns the embedded property-management chart template.
func DefaultChart() []ChartRow {
	rows, err := ReadChart(bytes.NewReader(chartTemplateCSV))
	if err != nil {
		panic(fmt.Sprintf("embedded chart template is invalid: %v", err))
	}
	return rows
}

// BuildAccounts validates the tree shape of rows and converts them into accounts for tenantID.
// Codes are unique, parents exist, roots sit at level 1 and a child's level is its parent's plus
// one, and only accounts without children accept postings.
func BuildAccounts(tenantID string, rows []ChartRow, actor string, now time.Time) ([]domain.Account, error) {
	byCode := make(map[string]ChartRow, len(rows))
	hasChildren := make(map[string]bool)
	for _, row := range rows {
		if _, dup := byCode[row.Code]; dup {
			return nil, fmt.Errorf("%w: duplicate account code %s", apperrors.ErrValidation, row.Code)
		}
		byCode[row.Code] = row
		if row.ParentCode != "" {
			hasChildren[row.ParentCode] = true
		}
	}

	levels := make(map[string]int, len(rows))
	var levelOf func(code string, depth int) (int, error)
	levelOf = func(code string, depth int) (int, error) {
		if l, ok := levels[code]; ok {
			return l, nil
		}
		if depth > len(rows) {
			return 0, fmt.Errorf("%w: cycle in account tree at %s", apperrors.ErrValidation, code)
		}
		row := byCode[code]
		if row.ParentCode == "" {
			levels[code] = 1
			return 1, nil
		}
		if _, ok := byCode[row.ParentCode]; !ok {
			return 0, fmt.Errorf("%w: account %s references unknown parent %s", apperrors.ErrValidation, code, row.ParentCode)
		}
		parentLevel, err := levelOf(row.ParentCode, depth+1)
		if err != nil {
			return 0, err
		}
		levels[code] = parentLevel + 1
		return parentLevel + 1, nil
	}

	accounts := make([]domain.Account, 0, len(rows))
	for _, row := range rows {
		level, err := levelOf(row.Code, 0)
		if err != nil {
			return nil, err
		}
		if row.Level != 0 && row.Level != level {
			return nil, fmt.Errorf("%w: account %s declares level %d but sits at level %d", apperrors.ErrValidation, row.Code, row.Level, level)
		}
		if row.AcceptsPosting && hasChildren[row.Code] {
			return nil, fmt.Errorf("%w: account %s has children and cannot accept postings", apperrors.ErrValidation, row.Code)
		}
		if parent, ok := byCode[row.ParentCode]; ok && parent.Type != row.Type {
			return nil, fmt.Errorf("%w: account %s is %s but its parent %s is %s", apperrors.ErrValidation, row.Code, row.Type, parent.Code, parent.Type)
		}
		normal := row.NormalBalance
		if normal == "" {
			normal = domain.DefaultNormalBalance(row.Type)
		}
		accounts = append(accounts, domain.Account{
			AccountID:      uuid.NewString(),
			TenantID:       tenantID,
			Code:           row.Code,
			Name:           row.Name,
			AccountType:    row.Type,
			ParentCode:     row.ParentCode,
			Level:          level,
			NormalBalance:  normal,
			AcceptsPosting: row.AcceptsPosting,
			IsActive:       true,
			AuditFields:    domain.NewAuditFields(actor, now),
		})
	}
	return accounts, nil
}

// SeedChart provisions rows for tenantID. Codes already present are left untouched, so seeding
// is safe to repeat. It returns the number of accounts inserted.
func SeedChart(ctx context.Context, writer portsrepo.AccountWriter, tenantID string, rows []ChartRow, actor string) (int, error) {
	if tenantID == "" {
		return 0, fmt.Errorf("%w: tenant is required", apperrors.ErrValidation)
	}
	accounts, err := BuildAccounts(tenantID, rows, actor, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	inserted, err := writer.SaveAccounts(ctx, accounts)
	if err != nil {
		return 0, fmt.Errorf("failed to save chart for tenant %s: %w", tenantID, err)
	}
	return inserted, nil
}
