// Package events publishes table lifecycle events for downstream
// consumers (kitchen displays, receipt mailers, analytics).
//
// Publishing is best-effort: a broker outage never blocks an order or a
// payment, it only costs the notification.
package events

import "context"

// Event types published to the table events exchange.
const (
	TypeOrderCreated   = "order.created"
	TypePaymentSettled = "payment.settled"
	TypeTableSettled   = "table.settled"
)

// Event is one table lifecycle notification.
type Event struct {
	Type        string  `json:"type"`
	TableID     string  `json:"table_id"`
	Participant string  `json:"guest_name,omitempty"`
	Amount      float64 `json:"amount,omitempty"`
	OrderCount  int     `json:"order_count,omitempty"`
	OccurredAt  int64   `json:"occurred_at"`
}

// Publisher delivers events to whoever listens.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Nop is a Publisher that drops everything, for tests and for running
// without a broker.
type Nop struct{}

func (Nop) Publish(ctx context.Context, event Event) error { return nil }
func (Nop) Close()                                         {}
