package pgsql

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

// PgxEventQueue is a transactional outbox on the domain_events table. Publish joins the caller's
// unit of work; Claim uses FOR UPDATE SKIP LOCKED so several workers can poll the same table.
type PgxEventQueue struct {
	BaseRepository
	now func() time.Time
}

func newPgxEventQueue(pool *pgxpool.Pool) *PgxEventQueue {
	return &PgxEventQueue{
		BaseRepository: BaseRepository{Pool: pool},
		now:            func() time.Time { return time.Now().UTC() },
	}
}

var _ portsrepo.EventQueue = (*PgxEventQueue)(nil)

// Publish appends an event.
func (q *PgxEventQueue) Publish(ctx context.Context, tenantID string, name domain.EventName, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", name, err)
	}
	now := q.now()
	_, err = q.db(ctx).Exec(ctx, `
		INSERT INTO domain_events (event_id, tenant_id, name, payload, available_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $5);`,
		uuid.NewString(), tenantID, string(name), raw, now,
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s: %w", name, err)
	}
	return nil
}

// Claim leases due events of the given names, oldest first.
func (q *PgxEventQueue) Claim(ctx context.Context, names []domain.EventName, limit int, lease time.Duration) ([]portsrepo.QueuedEvent, error) {
	if len(names) == 0 || limit <= 0 {
		return nil, nil
	}
	nameStrs := make([]string, len(names))
	for i, n := range names {
		nameStrs[i] = string(n)
	}
	now := q.now()
	rows, err := q.db(ctx).Query(ctx, `
		UPDATE domain_events
		SET attempts = attempts + 1, leased_until = $4
		WHERE event_id IN (
			SELECT event_id FROM domain_events
			WHERE state = 'PENDING' AND name = ANY($1) AND available_at <= $2
			  AND (leased_until IS NULL OR leased_until <= $2)
			ORDER BY created_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING event_id, tenant_id, name, payload, attempts, available_at, created_at, last_error;`,
		nameStrs, now, limit, now.Add(lease),
	)
	if err != nil {
		return nil, apperrors.Retryable(fmt.Errorf("failed to claim events: %w", err))
	}
	defer rows.Close()

	claimed := make([]portsrepo.QueuedEvent, 0, limit)
	for rows.Next() {
		var evt portsrepo.QueuedEvent
		var name string
		var payload []byte
		if err := rows.Scan(&evt.EventID, &evt.TenantID, &name, &payload, &evt.Attempts, &evt.AvailableAt, &evt.CreatedAt, &evt.LastError); err != nil {
			return nil, fmt.Errorf("failed to scan claimed event: %w", err)
		}
		evt.Name = domain.EventName(name)
		evt.Payload = json.RawMessage(payload)
		claimed = append(claimed, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed events: %w", err)
	}
	// RETURNING does not preserve the subquery order.
	sort.SliceStable(claimed, func(i, j int) bool { return claimed[i].CreatedAt.Before(claimed[j].CreatedAt) })
	return claimed, nil
}

func (q *PgxEventQueue) settle(ctx context.Context, eventID, query string, args ...any) error {
	tag, err := q.db(ctx).Exec(ctx, query, append([]any{eventID}, args...)...)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", eventID, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("event " + eventID + " not found")
	}
	return nil
}

// Ack marks an event handled.
func (q *PgxEventQueue) Ack(ctx context.Context, eventID string) error {
	return q.settle(ctx, eventID, `UPDATE domain_events SET state = 'DONE', leased_until = NULL WHERE event_id = $1;`)
}

// Retry releases the lease and schedules another delivery.
func (q *PgxEventQueue) Retry(ctx context.Context, eventID string, retryAt time.Time, cause string) error {
	return q.settle(ctx, eventID,
		`UPDATE domain_events SET available_at = $2, last_error = $3, leased_until = NULL WHERE event_id = $1;`,
		retryAt, cause)
}

// Bury dead-letters an event.
func (q *PgxEventQueue) Bury(ctx context.Context, eventID string, cause string) error {
	return q.settle(ctx, eventID,
		`UPDATE domain_events SET state = 'DEAD', last_error = $2, leased_until = NULL WHERE event_id = $1;`,
		cause)
}
