package events

import (
	"context"
	"errors"
	"time"
)

// Invoice event types. Also used as AMQP routing keys.
const (
	TypeInvoiceCreated         = "invoice.created"
	TypeInvoiceUpdated         = "invoice.updated"
	TypeInvoiceStatusChanged   = "invoice.status_changed"
	TypeInvoicePaymentRecorded = "invoice.payment_recorded"
)

// Event describes a change to one owner's invoice.
type Event struct {
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	InvoiceID  string    `json:"invoice_id"`
	InvoiceNo  string    `json:"invoice_no"`
	Status     string    `json:"status,omitempty"`
	PaidAmount string    `json:"paid_amount,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers invoice events. Callers treat failures as best-effort.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Multi fans an event out to every publisher and joins their errors.
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
