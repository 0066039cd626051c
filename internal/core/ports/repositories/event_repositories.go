package repositories

import (
	"context"
	"encoding/json"
	"time"

	"github.com/propledger/ledgercore/internal/core/domain"
)

// QueuedEvent is one delivery attempt of a domain event.
type QueuedEvent struct {
	EventID     string           `json:"eventID"`
	TenantID    string           `json:"tenantID"`
	Name        domain.EventName `json:"name"`
	Payload     json.RawMessage  `json:"payload"`
	Attempts    int              `json:"attempts"`
	AvailableAt time.Time        `json:"availableAt"`
	CreatedAt   time.Time        `json:"createdAt"`
	LastError   string           `json:"lastError,omitempty"`
}

// EventPublisher appends events to the durable queue. When called inside a unit of work the
// event becomes visible only if that unit of work commits.
type EventPublisher interface {
	Publish(ctx context.Context, tenantID string, name domain.EventName, payload any) error
}

// EventQueue is the consumer side of the at-least-once queue.
type EventQueue interface {
	EventPublisher

	// Claim leases up to limit due events named in names for lease; a crashed worker's lease
	// expires and the event is delivered again. Events of other names are left for their consumers.
	Claim(ctx context.Context, names []domain.EventName, limit int, lease time.Duration) ([]QueuedEvent, error)

	// Ack removes a handled event.
	Ack(ctx context.Context, eventID string) error

	// Retry schedules another delivery at retryAt and records the failure.
	Retry(ctx context.Context, eventID string, retryAt time.Time, cause string) error

	// Bury moves an event to the dead-letter state.
	Bury(ctx context.Context, eventID string, cause string) error
}
