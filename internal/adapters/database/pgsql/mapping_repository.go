package pgsql

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	"github.com/propledger/ledgercore/internal/models"
	"github.com/propledger/ledgercore/internal/utils/mapping"
)

type PgxMappingRepository struct {
	BaseRepository
}

func newPgxMappingRepository(pool *pgxpool.Pool) *PgxMappingRepository {
	return &PgxMappingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MappingReader = (*PgxMappingRepository)(nil)

// FindActiveMapping returns the active mapping of kind for key. The partial unique index on
// (tenant_id, kind, key) WHERE is_active guarantees at most one row.
func (r *PgxMappingRepository) FindActiveMapping(ctx context.Context, tenantID string, kind domain.MappingKind, key string) (*domain.AccountMapping, error) {
	query := `
		SELECT mapping_id, tenant_id, kind, key, receivable_code, income_code, cash_code, is_active,
		       created_at, created_by, last_updated_at, last_updated_by
		FROM account_mappings
		WHERE tenant_id = $1 AND kind = $2 AND key = $3 AND is_active;
	`
	var m models.AccountMapping
	err := r.db(ctx).QueryRow(ctx, query, tenantID, string(kind), key).Scan(
		&m.MappingID,
		&m.TenantID,
		&m.Kind,
		&m.Key,
		&m.ReceivableCode,
		&m.IncomeCode,
		&m.CashCode,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	if err != nil {
		return nil, lookupError(err, "active "+string(kind)+" mapping for "+key)
	}
	found := mapping.ToDomainAccountMapping(m)
	return &found, nil
}
