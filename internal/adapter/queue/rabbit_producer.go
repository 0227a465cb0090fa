package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/usecase"
)

const (
	RoutingKeyOrderCreated     = "order.created"
	RoutingKeyPaymentProcessed = "payment.processed"

	QueueOrderCreated     = "order_created.q"
	QueuePaymentProcessed = "payment_processed.q"
)

// RabbitProducer is the event relay: fire-and-forget publishing onto the
// durable exchange. Delivery to consumers is the broker's problem once the
// publish is accepted.
type RabbitProducer struct {
	ch       *amqp.Channel
	exchange string
}

// NewRabbitProducer declares the exchange, both queues and their bindings
// once at startup.
func NewRabbitProducer(ch *amqp.Channel, exchange string) (*RabbitProducer, error) {
	if err := ch.ExchangeDeclare(
		exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false, // internal
		false, // no-wait
		nil,
	); err != nil {
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	bindings := []struct{ queue, rk string }{
		{QueueOrderCreated, RoutingKeyOrderCreated},
		{QueuePaymentProcessed, RoutingKeyPaymentProcessed},
	}
	for _, b := range bindings {
		q, err := ch.QueueDeclare(
			b.queue,
			true,  // durable
			false, // auto-delete
			false, // exclusive
			false, // no-wait
			nil,
		)
		if err != nil {
			return nil, fmt.Errorf("declare queue %s: %w", b.queue, err)
		}
		if err := ch.QueueBind(q.Name, b.rk, exchange, false, nil); err != nil {
			return nil, fmt.Errorf("bind queue %s: %w", b.queue, err)
		}
	}

	return &RabbitProducer{ch: ch, exchange: exchange}, nil
}

func (p *RabbitProducer) PublishOrderCreated(ctx context.Context, msg usecase.OrderCreatedMsg) error {
	return p.publish(ctx, RoutingKeyOrderCreated, msg)
}

func (p *RabbitProducer) PublishPaymentProcessed(ctx context.Context, msg usecase.PaymentProcessedMsg) error {
	return p.publish(ctx, RoutingKeyPaymentProcessed, msg)
}

func (p *RabbitProducer) publish(ctx context.Context, routingKey string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // survive broker restarts
		Body:         body,
	}
	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, pub); err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	return nil
}

var _ usecase.EventPublisher = (*RabbitProducer)(nil)
