package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	"github.com/propledger/ledgercore/internal/models"
	"github.com/propledger/ledgercore/internal/utils/mapping"
)

const budgetColumns = `tenant_id, account_id, year, month, account_code, account_name, budgeted_amount,
	actual_amount, variance_amount, variance_percentage, alert_level, refreshed_at`

type PgxBudgetRepository struct {
	BaseRepository
}

func newPgxBudgetRepository(pool *pgxpool.Pool) *PgxBudgetRepository {
	return &PgxBudgetRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BudgetRepository = (*PgxBudgetRepository)(nil)

func scanBudgetExecution(row pgx.Row) (models.BudgetExecution, error) {
	var m models.BudgetExecution
	err := row.Scan(
		&m.TenantID,
		&m.AccountID,
		&m.Year,
		&m.Month,
		&m.AccountCode,
		&m.AccountName,
		&m.BudgetedAmount,
		&m.ActualAmount,
		&m.VarianceAmount,
		&m.VariancePercentage,
		&m.AlertLevel,
		&m.RefreshedAt,
	)
	return m, err
}

// FindExecution returns one row. Inside a unit of work the row stays locked until it ends, so
// concurrent refreshes of the same account and period compare against each other's alert level.
func (r *PgxBudgetRepository) FindExecution(ctx context.Context, tenantID, accountID string, year, month int) (*domain.BudgetExecution, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_execution
		WHERE tenant_id = $1 AND account_id = $2 AND year = $3 AND month = $4`
	if inTransaction(ctx) {
		query += ` FOR UPDATE`
	}
	m, err := scanBudgetExecution(r.db(ctx).QueryRow(ctx, query+`;`, tenantID, accountID, year, month))
	if err != nil {
		return nil, lookupError(err, fmt.Sprintf("budget for account %s in %04d-%02d", accountID, year, month))
	}
	row := mapping.ToDomainBudgetExecution(m)
	return &row, nil
}

// UpsertBudgeted creates the row or replaces its budgeted amount.
func (r *PgxBudgetRepository) UpsertBudgeted(ctx context.Context, row domain.BudgetExecution) error {
	m := mapping.ToModelBudgetExecution(row)
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO budget_execution (`+budgetColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (tenant_id, account_id, year, month) DO UPDATE
		SET budgeted_amount = EXCLUDED.budgeted_amount,
		    account_code = EXCLUDED.account_code,
		    account_name = EXCLUDED.account_name;`,
		m.TenantID,
		m.AccountID,
		m.Year,
		m.Month,
		m.AccountCode,
		m.AccountName,
		m.BudgetedAmount,
		m.ActualAmount,
		m.VarianceAmount,
		m.VariancePercentage,
		m.AlertLevel,
		m.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert budget for account %s in %04d-%02d: %w", row.AccountCode, row.Year, row.Month, err)
	}
	return nil
}

// SaveExecution stores the recomputed columns of an existing row.
func (r *PgxBudgetRepository) SaveExecution(ctx context.Context, row domain.BudgetExecution) error {
	m := mapping.ToModelBudgetExecution(row)
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE budget_execution
		SET actual_amount = $5, variance_amount = $6, variance_percentage = $7, alert_level = $8, refreshed_at = $9
		WHERE tenant_id = $1 AND account_id = $2 AND year = $3 AND month = $4;`,
		m.TenantID, m.AccountID, m.Year, m.Month,
		m.ActualAmount, m.VarianceAmount, m.VariancePercentage, m.AlertLevel, m.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save budget execution for account %s: %w", row.AccountID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("budget execution row not found")
	}
	return nil
}

// ListExecution returns the rows of a period ordered by account code.
func (r *PgxBudgetRepository) ListExecution(ctx context.Context, tenantID string, year, month int) ([]domain.BudgetExecution, error) {
	query := `SELECT ` + budgetColumns + ` FROM budget_execution
		WHERE tenant_id = $1 AND year = $2 AND month = $3
		ORDER BY account_code;`
	rows, err := r.db(ctx).Query(ctx, query, tenantID, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query budget execution for %04d-%02d: %w", year, month, err)
	}
	defer rows.Close()

	result := make([]domain.BudgetExecution, 0)
	for rows.Next() {
		m, err := scanBudgetExecution(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan budget execution row: %w", err)
		}
		result = append(result, mapping.ToDomainBudgetExecution(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating budget execution rows: %w", err)
	}
	return result, nil
}
