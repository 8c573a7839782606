package rabbit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/adwaidhmp/backend/internal/event"

	"github.com/cenkalti/backoff/v4"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// ErrBrokerUnavailable marks connection-level publish failures, the only
// class of error worth retrying.
var ErrBrokerUnavailable = errors.New("broker unavailable")

type Publisher struct {
	cfg *Config

	// attempt is swapped in tests to inject transport failures.
	attempt func(routingKey string, body []byte, messageID string, emittedAt int64) error
	notify  backoff.Notify
}

func NewPublisher(cfg *Config) *Publisher {
	p := &Publisher{cfg: cfg}
	p.attempt = p.publishOnce
	p.notify = func(err error, wait time.Duration) {
		logrus.WithError(err).WithField("backoff", wait.String()).Warn("Publish attempt failed, retrying")
	}
	return p
}

// Publish sends one envelope to the topic exchange. Connection failures are
// retried up to the configured maximum with exponential backoff plus jitter;
// any other error aborts immediately. Failure is reported to the caller as
// an error and never propagates further; the caller decides whether a lost
// event blocks the action that triggered it.
func (p *Publisher) Publish(routingKey string, env event.Envelope) error {
	body, env, err := event.Encode(env)
	if err != nil {
		return err
	}

	log := logrus.WithFields(logrus.Fields{
		"routing_key": routingKey,
		"message_id":  env.MessageID,
		"event_type":  env.EventType,
	})

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.cfg.PublishBaseDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0.1
	bo.MaxElapsedTime = 0

	operation := func() error {
		err := p.attempt(routingKey, body, env.MessageID, env.EmittedAt)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrBrokerUnavailable) {
			return backoff.Permanent(err)
		}
		return err
	}

	var retries uint64
	if p.cfg.PublishMaxRetries > 1 {
		retries = uint64(p.cfg.PublishMaxRetries - 1)
	}

	if err := backoff.RetryNotify(operation, backoff.WithMaxRetries(bo, retries), p.notify); err != nil {
		log.WithError(err).Error("Failed to publish after retries")
		return err
	}

	log.Info("Published event")
	return nil
}

// publishOnce owns its connection for exactly one attempt: dial, declare,
// send, close on every exit path.
func (p *Publisher) publishOnce(routingKey string, body []byte, messageID string, emittedAt int64) error {
	conn, err := amqp.Dial(p.cfg.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(p.cfg.Exchange, "topic", true, false, false, false, nil); err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.cfg.PublishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, p.cfg.Exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    messageID,
		Timestamp:    time.Unix(emittedAt, 0).UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrokerUnavailable, err)
	}
	return nil
}
