package queue

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/ThanhPhong1724/ecommerce-distributed-local-sub001/internal/logging"
)

// AckPolicy decides what happens to a delivery whose handler returned an
// error. Successful handling always acks.
type AckPolicy int

const (
	// PolicyLeaveUnacked logs and leaves the delivery unacknowledged: the
	// broker redelivers only after the channel closes, so there is no hot
	// redelivery loop.
	PolicyLeaveUnacked AckPolicy = iota
	// PolicyDrop negative-acknowledges without requeue (dead-letter if the
	// queue is configured with one).
	PolicyDrop
	// PolicyRequeue negative-acknowledges with requeue.
	PolicyRequeue
)

// Router manages multiple consumers (one per registered queue) on a single
// AMQP channel, with manual acknowledgment.
type Router struct {
	ch            *amqp.Channel
	prefetch      int
	callTimeout   time.Duration
	registrations []registration
}

type registration struct {
	queueName   string
	handler     Handler
	policy      AckPolicy
	consumerTag string
}

type RouterOption func(*Router)

func WithPrefetch(n int) RouterOption          { return func(r *Router) { r.prefetch = n } }
func WithTimeout(d time.Duration) RouterOption { return func(r *Router) { r.callTimeout = d } }

// NewRouter constructs a Router. Defaults: prefetch=50, timeout=10s.
func NewRouter(ch *amqp.Channel, opts ...RouterOption) *Router {
	r := &Router{
		ch:          ch,
		prefetch:    50,
		callTimeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register associates a queue with a handler and its failure policy.
func (r *Router) Register(queueName string, h Handler, policy AckPolicy) {
	r.registrations = append(r.registrations, registration{
		queueName:   queueName,
		handler:     h,
		policy:      policy,
		consumerTag: "c_" + queueName,
	})
}

// Start begins consuming; non-blocking (spawns one goroutine per queue).
// QoS (prefetch) is set per-channel and applies to all consumers on this channel.
func (r *Router) Start() error {
	l := logging.New("rmq-router")

	if err := r.ch.Qos(r.prefetch, 0, false); err != nil {
		return err
	}

	for _, reg := range r.registrations {
		deliveries, err := r.ch.Consume(
			reg.queueName,
			reg.consumerTag,
			false, // manual ack
			false, // exclusive
			false, // no-local
			false, // no-wait
			nil,
		)
		if err != nil {
			return err
		}

		go func(reg registration, msgs <-chan amqp.Delivery) {
			for d := range msgs {
				ctx, cancel := context.WithTimeout(context.Background(), r.callTimeout)
				err := reg.handler.Handle(ctx, d)
				cancel()

				if err == nil {
					_ = d.Ack(false)
					continue
				}

				l.Error("handler failed",
					"queue", reg.queueName, "routing_key", d.RoutingKey, "err", err)
				switch reg.policy {
				case PolicyDrop:
					_ = d.Nack(false, false)
				case PolicyRequeue:
					_ = d.Nack(false, true)
				default:
					// left unacknowledged on purpose
				}
			}
			l.Info("consumer stopped", "queue", reg.queueName, "tag", reg.consumerTag)
		}(reg, deliveries)
	}

	return nil
}
