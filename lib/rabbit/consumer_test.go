package rabbit

import (
	"testing"

	"github.com/adwaidhmp/backend/internal/event"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAcknowledger struct {
	acks    int
	nacks   int
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acks++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacks++
	a.requeue = requeue
	return nil
}

func delivery(ack *fakeAcknowledger, routingKey string, body []byte) amqp.Delivery {
	return amqp.Delivery{
		Acknowledger: ack,
		RoutingKey:   routingKey,
		Body:         body,
	}
}

func testConsumer(handlers map[string]Handler) *Consumer {
	cfg := &Config{Exchange: "user_events", Prefetch: 1}
	return NewConsumer(cfg, "user.profile", handlers)
}

func TestDispatchAcksOnSuccess(t *testing.T) {
	called := 0
	c := testConsumer(map[string]Handler{
		"user.created": func(env event.Envelope) Outcome {
			called++
			assert.Equal(t, "user.created", env.EventType)
			return Ack
		},
	})

	body, _, err := event.Encode(event.NewEnvelope("user.created", map[string]interface{}{"user_id": "u1"}))
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	c.dispatch(delivery(ack, "user.created", body))

	assert.Equal(t, 1, called)
	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}

func TestDispatchRequeuesOnTransientFailure(t *testing.T) {
	c := testConsumer(map[string]Handler{
		"user.created": func(env event.Envelope) Outcome { return Requeue },
	})

	body, _, err := event.Encode(event.NewEnvelope("user.created", map[string]interface{}{"user_id": "u1"}))
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	c.dispatch(delivery(ack, "user.created", body))

	assert.Equal(t, 0, ack.acks)
	assert.Equal(t, 1, ack.nacks)
	assert.True(t, ack.requeue)
}

func TestDispatchAcksPoisonMessageExactlyOnce(t *testing.T) {
	c := testConsumer(map[string]Handler{
		"user.created": func(env event.Envelope) Outcome {
			t.Fatal("handler must not see an undecodable message")
			return Ack
		},
	})

	ack := &fakeAcknowledger{}
	c.dispatch(delivery(ack, "user.created", []byte("{not json")))

	// acked, never nacked: a poison message must not loop forever
	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}

func TestDispatchDropsUnhandledRoutingKey(t *testing.T) {
	c := testConsumer(map[string]Handler{
		"user.created": func(env event.Envelope) Outcome { return Ack },
	})

	body, _, err := event.Encode(event.NewEnvelope("trainer.registered", map[string]interface{}{"user_id": "u1"}))
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	c.dispatch(delivery(ack, "trainer.registered", body))

	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}

func TestDispatchAcksDroppedMessage(t *testing.T) {
	c := testConsumer(map[string]Handler{
		"user.created": func(env event.Envelope) Outcome { return Drop },
	})

	body, _, err := event.Encode(event.NewEnvelope("user.created", map[string]interface{}{"user_id": "bad"}))
	require.NoError(t, err)

	ack := &fakeAcknowledger{}
	c.dispatch(delivery(ack, "user.created", body))

	assert.Equal(t, 1, ack.acks)
	assert.Equal(t, 0, ack.nacks)
}
