// Package events publishes order lifecycle notifications to Kafka for
// downstream consumers (fulfilment, analytics). Publishing is synchronous and
// best effort: a failed publish is logged and never fails the request.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/pkg/circuitbreaker"
	"github.com/segmentio/kafka-go"
)

type EventType string

const (
	OrderPlaced        EventType = "order.placed"
	OrderPaid          EventType = "order.paid"
	OrderStatusChanged EventType = "order.status_changed"
)

type OrderEvent struct {
	Type          EventType            `json:"type"`
	OrderID       string               `json:"order_id"`
	UserID        string               `json:"user_id"`
	Status        domain.OrderStatus   `json:"status"`
	PaymentMethod domain.PaymentMethod `json:"payment_method"`
	Paid          bool                 `json:"paid"`
	Amount        domain.Money         `json:"amount"`
	OccurredAt    time.Time            `json:"occurred_at"`
}

func NewOrderEvent(t EventType, o *domain.Order) OrderEvent {
	return OrderEvent{
		Type:          t,
		OrderID:       o.ID,
		UserID:        o.UserID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Paid:          o.Payment,
		Amount:        o.Amount,
		OccurredAt:    time.Now().UTC(),
	}
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer  messageWriter
	breaker *circuitbreaker.Breaker
	log     *slog.Logger
	timeout time.Duration
}

func NewKafkaPublisher(brokers []string, topic string, breaker *circuitbreaker.Breaker, log *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{}, // same order id, same partition
		AllowAutoTopicCreation: true,
		RequiredAcks:           kafka.RequireOne,
	}
	return &KafkaPublisher{writer: w, breaker: breaker, log: log, timeout: 5 * time.Second}
}

func (p *KafkaPublisher) Publish(ctx context.Context, evt OrderEvent) {
	if err := p.publish(ctx, evt); err != nil {
		p.log.ErrorContext(ctx, "failed to publish order event",
			"event", evt.Type, "order_id", evt.OrderID, "error", err)
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, evt OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(evt.Type)},
		},
	}

	// Detached from the request so a client disconnect does not drop the event
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	return circuitbreaker.Do(p.breaker, func() error {
		return p.writer.WriteMessages(ctx, msg)
	})
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// Nop discards events; used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, OrderEvent) {}
