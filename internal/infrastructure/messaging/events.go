package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/communet/internal/domain/event"
)

// Envelope is the wire form of a domain event on the events queue.
type Envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v.
func (e Envelope) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// Sender puts a typed message on a queue. *helpers.RabbitPublisher
// satisfies it.
type Sender interface {
	Publish(ctx context.Context, msgType string, body []byte) error
}

// EventPublisher forwards domain events to RabbitMQ.
type EventPublisher struct {
	sender Sender
}

func NewEventPublisher(sender Sender) *EventPublisher {
	return &EventPublisher{sender: sender}
}

func (p *EventPublisher) Forward(ctx context.Context, e event.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.EventName(), err)
	}
	body, err := json.Marshal(Envelope{Type: e.EventName(), OccurredAt: e.OccurredAt(), Payload: payload})
	if err != nil {
		return fmt.Errorf("encode %s: %w", e.EventName(), err)
	}
	return p.sender.Publish(ctx, e.EventName(), body)
}

// HandlerFunc processes one decoded envelope.
type HandlerFunc func(ctx context.Context, env Envelope) error

// Consume handles deliveries until the channel closes or ctx ends.
// Malformed messages are dropped; handler failures are requeued once and
// dropped on redelivery.
func Consume(ctx context.Context, deliveries <-chan amqp.Delivery, handle HandlerFunc, logger *logrus.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-deliveries:
			if !ok {
				return
			}
			process(ctx, msg, handle, logger)
		}
	}
}

func process(ctx context.Context, msg amqp.Delivery, handle HandlerFunc, logger *logrus.Logger) {
	var env Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil || env.Type == "" {
		logger.WithError(err).Warn("bad event message")
		_ = msg.Nack(false, false)
		return
	}
	log := logger.WithField("event", env.Type)
	if err := handle(ctx, env); err != nil {
		log.WithError(err).WithField("redelivered", msg.Redelivered).Error("event handler failed")
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
}
