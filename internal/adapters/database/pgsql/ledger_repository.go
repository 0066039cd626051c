package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	"github.com/propledger/ledgercore/internal/models"
	"github.com/propledger/ledgercore/internal/utils/mapping"
	"github.com/propledger/ledgercore/internal/utils/pagination"
)

const transactionColumns = `transaction_id, tenant_id, transaction_date, description, reference_type, reference_id,
	status, total_debit, total_credit, metadata, posting_key, posted_at, cancelled_at, cancel_reason,
	created_at, created_by, last_updated_at, last_updated_by`

const entryColumns = `e.entry_id, e.transaction_id, e.tenant_id, e.account_id, e.account_code, e.debit_amount,
	e.credit_amount, e.description, e.third_party_type, e.third_party_id, e.created_at`

type PgxLedgerRepository struct {
	BaseRepository
}

func newPgxLedgerRepository(pool *pgxpool.Pool) *PgxLedgerRepository {
	return &PgxLedgerRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.LedgerRepositoryFacade = (*PgxLedgerRepository)(nil)

func scanTransaction(row pgx.Row) (models.Transaction, error) {
	var m models.Transaction
	err := row.Scan(
		&m.TransactionID,
		&m.TenantID,
		&m.TransactionDate,
		&m.Description,
		&m.ReferenceType,
		&m.ReferenceID,
		&m.Status,
		&m.TotalDebit,
		&m.TotalCredit,
		&m.Metadata,
		&m.PostingKey,
		&m.PostedAt,
		&m.CancelledAt,
		&m.CancelReason,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func entryScanTargets(m *models.Entry) []any {
	return []any{
		&m.EntryID,
		&m.TransactionID,
		&m.TenantID,
		&m.AccountID,
		&m.AccountCode,
		&m.DebitAmount,
		&m.CreditAmount,
		&m.Description,
		&m.ThirdPartyType,
		&m.ThirdPartyID,
		&m.CreatedAt,
	}
}

// entriesFor loads the entries of transactionIDs keyed by transaction, in insertion order.
func (r *PgxLedgerRepository) entriesFor(ctx context.Context, tenantID string, transactionIDs []string) (map[string][]models.Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM entries e
		WHERE e.tenant_id = $1 AND e.transaction_id = ANY($2)
		ORDER BY e.line_no;`
	rows, err := r.db(ctx).Query(ctx, query, tenantID, transactionIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	byTxn := make(map[string][]models.Entry, len(transactionIDs))
	for rows.Next() {
		var m models.Entry
		if err := rows.Scan(entryScanTargets(&m)...); err != nil {
			return nil, fmt.Errorf("failed to scan entry row: %w", err)
		}
		byTxn[m.TransactionID] = append(byTxn[m.TransactionID], m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating entry rows: %w", err)
	}
	return byTxn, nil
}

// FindTransactionByID retrieves a transaction with its entries. Inside a unit of work the header
// row stays locked until it ends, so writers of the same transaction queue behind each other.
func (r *PgxLedgerRepository) FindTransactionByID(ctx context.Context, tenantID, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE tenant_id = $1 AND transaction_id = $2`
	if inTransaction(ctx) {
		query += ` FOR UPDATE`
	}
	m, err := scanTransaction(r.db(ctx).QueryRow(ctx, query+`;`, tenantID, transactionID))
	if err != nil {
		return nil, lookupError(err, "transaction "+transactionID)
	}
	entries, err := r.entriesFor(ctx, tenantID, []string{transactionID})
	if err != nil {
		return nil, err
	}
	txn := mapping.ToDomainTransaction(m, entries[transactionID])
	return &txn, nil
}

// FindTransactionsByReference returns every transaction derived from ref, oldest first.
func (r *PgxLedgerRepository) FindTransactionsByReference(ctx context.Context, tenantID string, ref domain.Reference, periodKey string) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions
		WHERE tenant_id = $1 AND reference_type = $2 AND reference_id = $3`
	args := []any{tenantID, string(ref.Type), ref.ID}
	if periodKey != "" {
		query += ` AND metadata->>'` + domain.MetadataPeriodKey + `' = $4`
		args = append(args, periodKey)
	}
	query += ` ORDER BY created_at, posting_key;`

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions for %s: %w", ref, err)
	}
	defer rows.Close()

	headers := make([]models.Transaction, 0)
	ids := make([]string, 0)
	for rows.Next() {
		m, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction row for %s: %w", ref, err)
		}
		headers = append(headers, m)
		ids = append(ids, m.TransactionID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transaction rows for %s: %w", ref, err)
	}
	if len(headers) == 0 {
		return []domain.Transaction{}, nil
	}

	entries, err := r.entriesFor(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}
	txns := make([]domain.Transaction, len(headers))
	for i, m := range headers {
		txns[i] = mapping.ToDomainTransaction(m, entries[m.TransactionID])
	}
	return txns, nil
}

// SumPostedEntries returns debit and credit sums of posted entries of an account dated in [from, to).
func (r *PgxLedgerRepository) SumPostedEntries(ctx context.Context, tenantID, accountID string, from, to time.Time) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(e.debit_amount), 0), COALESCE(SUM(e.credit_amount), 0)
		FROM entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.tenant_id = $1 AND e.account_id = $2 AND t.status = 'POSTED'
		  AND t.transaction_date >= $3 AND t.transaction_date < $4;
	`
	var debit, credit decimal.Decimal
	if err := r.db(ctx).QueryRow(ctx, query, tenantID, accountID, from, to).Scan(&debit, &credit); err != nil {
		return decimal.Zero, decimal.Zero, fmt.Errorf("failed to sum entries for account %s: %w", accountID, err)
	}
	return debit, credit, nil
}

// ListPostedEntriesByAccount pages through posted entries of an account using token-based pagination.
// Rows are ordered by transaction date, creation time and entry ID, all descending.
func (r *PgxLedgerRepository) ListPostedEntriesByAccount(ctx context.Context, tenantID, accountID string, limit int, nextToken *string) ([]domain.Entry, *string, error) {
	// We fetch one extra item to determine if there's a next page.
	fetchLimit := limit + 1
	query := `SELECT ` + entryColumns + `, t.transaction_date
		FROM entries e
		JOIN transactions t ON t.transaction_id = e.transaction_id
		WHERE e.tenant_id = $1 AND e.account_id = $2 AND t.status = 'POSTED'`
	args := []any{tenantID, accountID}

	if nextToken != nil && *nextToken != "" {
		cursor, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", apperrors.ErrValidation, err)
		}
		// Tuple comparison is concise and efficient in Postgres
		query += ` AND (t.transaction_date, e.created_at, e.entry_id) < ($3, $4, $5)`
		args = append(args, cursor.Date, cursor.CreatedAt, cursor.ID)
	}
	query += ` ORDER BY t.transaction_date DESC, e.created_at DESC, e.entry_id DESC LIMIT $` + strconv.Itoa(len(args)+1) + `;`
	args = append(args, fetchLimit)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query entries for account %s: %w", accountID, err)
	}
	defer rows.Close()

	ms := make([]models.Entry, 0, fetchLimit)
	for rows.Next() {
		var m models.Entry
		if err := rows.Scan(append(entryScanTargets(&m), &m.TransactionDate)...); err != nil {
			return nil, nil, fmt.Errorf("failed to scan entry row for account %s: %w", accountID, err)
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("error iterating entry rows for account %s: %w", accountID, err)
	}

	var next *string
	if len(ms) > limit {
		ms = ms[:limit]
		last := ms[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.TransactionDate, CreatedAt: last.CreatedAt, ID: last.EntryID})
		next = &token
	}
	return mapping.ToDomainEntrySlice(ms), next, nil
}

// LockReference takes a transaction-scoped advisory lock on key.
func (r *PgxLedgerRepository) LockReference(ctx context.Context, tenantID, key string) error {
	if !inTransaction(ctx) {
		return fmt.Errorf("%w: reference lock %s requested outside a unit of work", apperrors.ErrInternal, key)
	}
	if _, err := r.db(ctx).Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1));`, tenantID+"|"+key); err != nil {
		return fmt.Errorf("failed to lock reference %s: %w", key, err)
	}
	return nil
}

func queueEntry(batch *pgx.Batch, tenantID string, entry domain.Entry) {
	m := mapping.ToModelEntry(tenantID, entry)
	batch.Queue(`
		INSERT INTO entries (entry_id, transaction_id, tenant_id, account_id, account_code, debit_amount,
			credit_amount, description, third_party_type, third_party_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11);`,
		m.EntryID,
		m.TransactionID,
		m.TenantID,
		m.AccountID,
		m.AccountCode,
		m.DebitAmount,
		m.CreditAmount,
		m.Description,
		m.ThirdPartyType,
		m.ThirdPartyID,
		m.CreatedAt,
	)
}

func (r *PgxLedgerRepository) sendBatch(ctx context.Context, batch *pgx.Batch, what string) error {
	// Important: Close the batch results to check for errors in each command
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s: %v", apperrors.ErrDuplicate, what, err)
		}
		return fmt.Errorf("failed to write %s: %w", what, err)
	}
	return nil
}

// SaveTransaction inserts the header and its entries. A reused posting key returns ErrDuplicate.
func (r *PgxLedgerRepository) SaveTransaction(ctx context.Context, txn domain.Transaction) error {
	m := mapping.ToModelTransaction(txn)
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);`,
		m.TransactionID,
		m.TenantID,
		m.TransactionDate,
		m.Description,
		m.ReferenceType,
		m.ReferenceID,
		m.Status,
		m.TotalDebit,
		m.TotalCredit,
		m.Metadata,
		m.PostingKey,
		m.PostedAt,
		m.CancelledAt,
		m.CancelReason,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	for _, entry := range txn.Entries {
		queueEntry(batch, txn.TenantID, entry)
	}
	return r.sendBatch(ctx, batch, "transaction "+txn.TransactionID+" (posting key "+txn.PostingKey+")")
}

// updateDraftTotals stores new header totals, failing unless the transaction is still a draft.
func (r *PgxLedgerRepository) updateDraftTotals(ctx context.Context, txn domain.Transaction) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE transactions
		SET total_debit = $3, total_credit = $4, last_updated_at = $5, last_updated_by = $6
		WHERE tenant_id = $1 AND transaction_id = $2 AND status = 'DRAFT';`,
		txn.TenantID, txn.TransactionID, txn.TotalDebit, txn.TotalCredit, txn.LastUpdatedAt, txn.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update totals of transaction %s: %w", txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionRejected(ctx, txn.TenantID, txn.TransactionID)
	}
	return nil
}

// transitionRejected explains why a status-guarded statement touched no rows.
func (r *PgxLedgerRepository) transitionRejected(ctx context.Context, tenantID, transactionID string) error {
	var status string
	err := r.db(ctx).QueryRow(ctx, `SELECT status FROM transactions WHERE tenant_id = $1 AND transaction_id = $2;`, tenantID, transactionID).Scan(&status)
	if err != nil {
		return lookupError(err, "transaction "+transactionID)
	}
	return fmt.Errorf("%w: transaction %s is %s", apperrors.ErrInvalidTransition, transactionID, status)
}

// InsertEntry appends an entry to a draft and stores the new totals.
func (r *PgxLedgerRepository) InsertEntry(ctx context.Context, txn domain.Transaction, entry domain.Entry) error {
	if err := r.updateDraftTotals(ctx, txn); err != nil {
		return err
	}
	batch := &pgx.Batch{}
	queueEntry(batch, txn.TenantID, entry)
	return r.sendBatch(ctx, batch, "entry "+entry.EntryID)
}

// DeleteEntry removes an entry of a draft and stores the new totals.
func (r *PgxLedgerRepository) DeleteEntry(ctx context.Context, txn domain.Transaction, entryID string) error {
	if err := r.updateDraftTotals(ctx, txn); err != nil {
		return err
	}
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM entries WHERE tenant_id = $1 AND transaction_id = $2 AND entry_id = $3;`,
		txn.TenantID, txn.TransactionID, entryID)
	if err != nil {
		return fmt.Errorf("failed to delete entry %s: %w", entryID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("entry " + entryID + " not found in transaction " + txn.TransactionID)
	}
	return nil
}

// UpdateTransactionStatus persists a status transition and its timestamps, provided the row is
// still in status from.
func (r *PgxLedgerRepository) UpdateTransactionStatus(ctx context.Context, txn domain.Transaction, from domain.TransactionStatus) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE transactions
		SET status = $3, posted_at = $4, cancelled_at = $5, cancel_reason = $6, last_updated_at = $7, last_updated_by = $8
		WHERE tenant_id = $1 AND transaction_id = $2 AND status = $9;`,
		txn.TenantID, txn.TransactionID, string(txn.Status), txn.PostedAt, txn.CancelledAt, txn.CancelReason,
		txn.LastUpdatedAt, txn.LastUpdatedBy, string(from),
	)
	if err != nil {
		return fmt.Errorf("failed to update status of transaction %s: %w", txn.TransactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionRejected(ctx, txn.TenantID, txn.TransactionID)
	}
	return nil
}

// DeleteDraft removes a draft; entries go with it through ON DELETE CASCADE.
func (r *PgxLedgerRepository) DeleteDraft(ctx context.Context, tenantID, transactionID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM transactions WHERE tenant_id = $1 AND transaction_id = $2 AND status = 'DRAFT';`,
		tenantID, transactionID)
	if err != nil {
		return fmt.Errorf("failed to delete transaction %s: %w", transactionID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.transitionRejected(ctx, tenantID, transactionID)
	}
	return nil
}
