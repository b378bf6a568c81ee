// Package events publishes order lifecycle events to NATS. Publishing is
// fire-and-forget: subscribers get best-effort notifications and the write
// path never fails because the bus is down.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/dukerupert/njord/internal/domain"
)

// Event subjects.
const (
	SubjectOrderCreated = "orders.created"
	SubjectOrderUpdated = "orders.updated"
)

// OrderEvent is the wire payload for order lifecycle events.
type OrderEvent struct {
	OrderID  int64     `json:"order_id"`
	Status   string    `json:"status"`
	Currency string    `json:"currency"`
	Total    string    `json:"total"`
	Paid     bool      `json:"paid"`
	At       time.Time `json:"at"`
}

// Publisher emits order events on a NATS connection.
type Publisher struct {
	conn   *nats.Conn
	logger zerolog.Logger
}

// Connect dials the NATS server and returns a publisher.
func Connect(url string, logger zerolog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url,
		nats.Name("njord"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Publisher{
		conn:   conn,
		logger: logger.With().Str("component", "events").Logger(),
	}, nil
}

// Close drains the connection.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.logger.Warn().Err(err).Msg("failed to drain nats connection")
	}
}

// OrderSaved publishes a created or updated event for the order. It matches
// the order service's post-save observer signature.
func (p *Publisher) OrderSaved(ctx context.Context, order *domain.Order, creating bool) {
	subject := SubjectOrderUpdated
	if creating {
		subject = SubjectOrderCreated
	}

	event := OrderEvent{
		OrderID:  order.ID,
		Status:   string(order.Status),
		Currency: order.Currency,
		Total:    order.Total.String(),
		Paid:     order.DatePaid != nil,
		At:       order.DateModified,
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Int64("order_id", order.ID).Msg("failed to encode order event")
		return
	}

	if err := p.conn.Publish(subject, data); err != nil {
		p.logger.Warn().Err(err).Str("subject", subject).Int64("order_id", order.ID).Msg("failed to publish order event")
	}
}
