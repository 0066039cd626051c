package events

import (
	"context"

	"github.com/propledger/ledgercore/internal/core/domain"
	portsrepo "github.com/propledger/ledgercore/internal/core/ports/repositories"
	portssvc "github.com/propledger/ledgercore/internal/core/ports/services"
)

// RegisterLedgerHandlers subscribes the generators and the budget aggregator to their events.
func RegisterLedgerHandlers(d *Dispatcher, svc *portssvc.ServiceContainer) {
	d.Register(domain.EventInvoiceCreated, func(ctx context.Context, evt portsrepo.QueuedEvent) error {
		payload, err := Decode[domain.InvoiceCreated](evt)
		if err != nil {
			return err
		}
		payload.TenantID = tenantOf(payload.TenantID, evt)
		_, err = svc.Generators.HandleInvoiceCreated(ctx, payload)
		return err
	})

	d.Register(domain.EventPaymentReceived, func(ctx context.Context, evt portsrepo.QueuedEvent) error {
		payload, err := Decode[domain.PaymentReceived](evt)
		if err != nil {
			return err
		}
		payload.TenantID = tenantOf(payload.TenantID, evt)
		_, err = svc.Generators.HandlePaymentReceived(ctx, payload)
		return err
	})

	d.Register(domain.EventLateFeeApplied, func(ctx context.Context, evt portsrepo.QueuedEvent) error {
		payload, err := Decode[domain.LateFeeApplied](evt)
		if err != nil {
			return err
		}
		payload.TenantID = tenantOf(payload.TenantID, evt)
		_, err = svc.Generators.HandleLateFeeApplied(ctx, payload)
		return err
	})

	d.Register(domain.EventTransactionPosted, func(ctx context.Context, evt portsrepo.QueuedEvent) error {
		payload, err := Decode[domain.TransactionPosted](evt)
		if err != nil {
			return err
		}
		_, err = svc.Budget.RefreshForTransaction(ctx, tenantOf(payload.TenantID, evt), payload.AccountIDs, domain.PeriodOf(payload.Date))
		return err
	})

	d.Register(domain.EventTransactionCancelled, func(ctx context.Context, evt portsrepo.QueuedEvent) error {
		payload, err := Decode[domain.TransactionCancelled](evt)
		if err != nil {
			return err
		}
		_, err = svc.Budget.RefreshForTransaction(ctx, tenantOf(payload.TenantID, evt), payload.AccountIDs, domain.PeriodOf(payload.Date))
		return err
	})
}

func tenantOf(payloadTenant string, evt portsrepo.QueuedEvent) string {
	if payloadTenant != "" {
		return payloadTenant
	}
	return evt.TenantID
}
