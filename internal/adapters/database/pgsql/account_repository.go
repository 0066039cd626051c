package pgsql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	"github.com/propledger/ledgercore/internal/models"
	"github.com/propledger/ledgercore/internal/utils/mapping"
)

const accountColumns = `account_id, tenant_id, code, name, account_type, parent_code, level, normal_balance,
	accepts_posting, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.TenantID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.ParentCode,
		&m.Level,
		&m.NormalBalance,
		&m.AcceptsPosting,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func (r *PgxAccountRepository) queryAccounts(ctx context.Context, query string, args ...any) ([]models.Account, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	accounts := make([]models.Account, 0)
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// FindAccountByCode retrieves an account by its hierarchical code within a tenant.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, tenantID, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND code = $2;`
	m, err := scanAccount(r.db(ctx).QueryRow(ctx, query, tenantID, code))
	if err != nil {
		return nil, lookupError(err, "account with code "+code)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tenantID, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = $2;`
	m, err := scanAccount(r.db(ctx).QueryRow(ctx, query, tenantID, accountID))
	if err != nil {
		return nil, lookupError(err, "account "+accountID)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs. Missing IDs are absent from the map.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tenantID string, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND account_id = ANY($2);`
	ms, err := r.queryAccounts(ctx, query, tenantID, accountIDs)
	if err != nil {
		return nil, err
	}
	found := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		found[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return found, nil
}

// ListChildren returns the direct children of parentCode ordered by code.
func (r *PgxAccountRepository) ListChildren(ctx context.Context, tenantID, parentCode string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE tenant_id = $1 AND parent_code = $2 ORDER BY code;`
	ms, err := r.queryAccounts(ctx, query, tenantID, parentCode)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

// SaveAccounts inserts accounts in one batch. Codes that already exist for the tenant are skipped.
func (r *PgxAccountRepository) SaveAccounts(ctx context.Context, accounts []domain.Account) (int, error) {
	if len(accounts) == 0 {
		return 0, nil
	}
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (tenant_id, code) DO NOTHING;
	`
	batch := &pgx.Batch{}
	for _, account := range accounts {
		m := mapping.ToModelAccount(account)
		batch.Queue(query,
			m.AccountID,
			m.TenantID,
			m.Code,
			m.Name,
			m.AccountType,
			m.ParentCode,
			m.Level,
			m.NormalBalance,
			m.AcceptsPosting,
			m.IsActive,
			m.CreatedAt,
			m.CreatedBy,
			m.LastUpdatedAt,
			m.LastUpdatedBy,
		)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	defer br.Close()
	inserted := 0
	for _, account := range accounts {
		tag, err := br.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to insert account %s: %w", account.Code, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
