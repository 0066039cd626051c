// Package events routes queued domain events to the services that consume them.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/propledger/ledgercore/internal/apperrors"
	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
)

// Handler processes one delivery of an event. Returned errors are classified with apperrors.KindOf.
type Handler func(ctx context.Context, evt portsrepo.QueuedEvent) error

// Dispatcher maps event names to handlers.
type Dispatcher struct {
	handlers map[domain.EventName]Handler
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[domain.EventName]Handler)}
}

// Register sets the handler for name, replacing any previous one.
func (d *Dispatcher) Register(name domain.EventName, h Handler) {
	d.handlers[name] = h
}

// Names lists the registered event names in a stable order.
func (d *Dispatcher) Names() []domain.EventName {
	names := make([]domain.EventName, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })
	return names
}

// Dispatch runs the handler registered for evt.Name.
func (d *Dispatcher) Dispatch(ctx context.Context, evt portsrepo.QueuedEvent) error {
	h, ok := d.handlers[evt.Name]
	if !ok {
		return apperrors.Fatal(fmt.Errorf("no handler registered for event %s", evt.Name))
	}
	return h(ctx, evt)
}

// Decode unmarshals an event payload. A payload that does not decode can never succeed, so the
// error is fatal.
func Decode[T any](evt portsrepo.QueuedEvent) (T, error) {
	var payload T
	if err := json.Unmarshal(evt.Payload, &payload); err != nil {
		return payload, apperrors.Fatal(fmt.Errorf("%w: malformed %s payload in event %s: %w", apperrors.ErrValidation, evt.Name, evt.EventID, err))
	}
	return payload, nil
}
