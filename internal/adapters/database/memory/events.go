package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

type eventState string

const (
	eventPending eventState = "PENDING"
	eventDone    eventState = "DONE"
	eventDead    eventState = "DEAD"
)

type storedEvent struct {
	portsrepo.QueuedEvent
	state       eventState
	leasedUntil time.Time
}

var _ portsrepo.EventQueue = (*Store)(nil)

// Publish implements portsrepo.EventPublisher.
func (s *Store) Publish(_ context.Context, tenantID string, name domain.EventName, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s payload: %w", name, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	evt := &storedEvent{
		QueuedEvent: portsrepo.QueuedEvent{
			EventID:     uuid.NewString(),
			TenantID:    tenantID,
			Name:        name,
			Payload:     raw,
			AvailableAt: now,
			CreatedAt:   now,
		},
		state: eventPending,
	}
	s.events[evt.EventID] = evt
	s.eventOrder = append(s.eventOrder, evt.EventID)
	return nil
}

// Claim implements portsrepo.EventQueue.
func (s *Store) Claim(_ context.Context, names []domain.EventName, limit int, lease time.Duration) ([]portsrepo.QueuedEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	claimed := make([]portsrepo.QueuedEvent, 0, limit)
	for _, id := range s.eventOrder {
		if len(claimed) >= limit {
			break
		}
		evt := s.events[id]
		if evt.state != eventPending || evt.AvailableAt.After(now) || evt.leasedUntil.After(now) || !slices.Contains(names, evt.Name) {
			continue
		}
		evt.Attempts++
		evt.leasedUntil = now.Add(lease)
		claimed = append(claimed, evt.QueuedEvent)
	}
	return claimed, nil
}

func (s *Store) event(eventID string) (*storedEvent, error) {
	evt, ok := s.events[eventID]
	if !ok {
		return nil, apperrors.NewNotFoundError("event " + eventID + " not found")
	}
	return evt, nil
}

// Ack implements portsrepo.EventQueue.
func (s *Store) Ack(_ context.Context, eventID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	evt, err := s.event(eventID)
	if err != nil {
		return err
	}
	evt.state = eventDone
	evt.leasedUntil = time.Time{}
	return nil
}

// Retry implements portsrepo.EventQueue.
func (s *Store) Retry(_ context.Context, eventID string, retryAt time.Time, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	evt, err := s.event(eventID)
	if err != nil {
		return err
	}
	evt.AvailableAt = retryAt
	evt.LastError = cause
	evt.leasedUntil = time.Time{}
	return nil
}

// Bury implements portsrepo.EventQueue.
func (s *Store) Bury(_ context.Context, eventID string, cause string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	evt, err := s.event(eventID)
	if err != nil {
		return err
	}
	evt.state = eventDead
	evt.LastError = cause
	evt.leasedUntil = time.Time{}
	return nil
}

// PendingEvents returns undelivered events in publish order, optionally filtered by name.
func (s *Store) PendingEvents(names ...domain.EventName) []portsrepo.QueuedEvent {
	return s.eventsIn(eventPending, names)
}

// DeadEvents returns dead-lettered events.
func (s *Store) DeadEvents() []portsrepo.QueuedEvent {
	return s.eventsIn(eventDead, nil)
}

func (s *Store) eventsIn(state eventState, names []domain.EventName) []portsrepo.QueuedEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]portsrepo.QueuedEvent, 0)
	for _, id := range s.eventOrder {
		evt := s.events[id]
		if evt.state != state {
			continue
		}
		if len(names) > 0 && !slices.Contains(names, evt.Name) {
			continue
		}
		out = append(out, evt.QueuedEvent)
	}
	return out
}
