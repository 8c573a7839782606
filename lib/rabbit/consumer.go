package rabbit

import (
	"fmt"
	"time"

	"github.com/adwaidhmp/backend/internal/event"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Outcome tells the consumer what to do with a delivery after the handler
// has seen it. Requeue is reserved for transient storage errors; permanently
// invalid messages are dropped so they cannot loop forever.
type Outcome int

const (
	Ack Outcome = iota
	Requeue
	Drop
)

type Handler func(env event.Envelope) Outcome

type Consumer struct {
	cfg          *Config
	queue        string
	handlers     map[string]Handler // keyed by routing key
	stopCh       chan struct{}
	pollInterval time.Duration
}

func NewConsumer(cfg *Config, queue string, handlers map[string]Handler) *Consumer {
	return &Consumer{
		cfg:          cfg,
		queue:        queue,
		handlers:     handlers,
		stopCh:       make(chan struct{}),
		pollInterval: time.Second,
	}
}

// Run declares exchange, queue and bindings idempotently and consumes until
// Stop is called. The loop wakes at least once per poll interval so a stop
// request is observed within about a second.
func (c *Consumer) Run() error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(c.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	for routingKey := range c.handlers {
		if err := ch.QueueBind(c.queue, routingKey, c.cfg.Exchange, false, nil); err != nil {
			return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
		}
	}
	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}

	deliveries, err := ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}

	logrus.WithField("queue", c.queue).Info("Consumer listening")

	for {
		select {
		case <-c.stopCh:
			logrus.WithField("queue", c.queue).Info("Consumer stop requested")
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("%w: delivery channel closed", ErrBrokerUnavailable)
			}
			c.dispatch(d)
		case <-time.After(c.pollInterval):
			// wake up to observe stopCh
		}
	}
}

func (c *Consumer) dispatch(d amqp.Delivery) {
	log := logrus.WithFields(logrus.Fields{
		"queue":       c.queue,
		"routing_key": d.RoutingKey,
	})

	env, err := event.Decode(d.Body)
	if err != nil {
		// Poison message: redelivery cannot fix a malformed payload.
		log.WithError(err).Warn("Dropping undecodable message")
		if err := d.Ack(false); err != nil {
			log.WithError(err).Error("Failed to ack poison message")
		}
		return
	}

	handler, ok := c.handlers[d.RoutingKey]
	if !ok {
		log.WithField("message_id", env.MessageID).Warn("No handler for routing key, dropping")
		if err := d.Ack(false); err != nil {
			log.WithError(err).Error("Failed to ack unhandled message")
		}
		return
	}

	switch handler(env) {
	case Requeue:
		if err := d.Nack(false, true); err != nil {
			log.WithError(err).Error("Failed to nack message")
		}
	case Drop:
		log.WithField("message_id", env.MessageID).Warn("Dropping message")
		if err := d.Ack(false); err != nil {
			log.WithError(err).Error("Failed to ack dropped message")
		}
	default:
		if err := d.Ack(false); err != nil {
			log.WithError(err).Error("Failed to ack message")
		}
	}
}

func (c *Consumer) Stop() {
	close(c.stopCh)
}
