package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is the wire-level wrapper around a domain event. The routing key
// travels on the broker frame, not in the body.
type Envelope struct {
	EventType string                 `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
	MessageID string                 `json:"message_id"`
	EmittedAt int64                  `json:"emitted_at"`
}

// NewEnvelope builds an envelope with a fresh message id and an emitted-at
// timestamp in UTC seconds.
func NewEnvelope(eventType string, payload map[string]interface{}) Envelope {
	return Envelope{
		EventType: eventType,
		Payload:   payload,
		MessageID: uuid.NewString(),
		EmittedAt: time.Now().UTC().Unix(),
	}
}

// Encode serializes the envelope, filling in message id and timestamp when
// the caller did not supply them.
func Encode(env Envelope) ([]byte, Envelope, error) {
	if env.MessageID == "" {
		env.MessageID = uuid.NewString()
	}
	if env.EmittedAt == 0 {
		env.EmittedAt = time.Now().UTC().Unix()
	}
	b, err := json.Marshal(env)
	if err != nil {
		return nil, env, fmt.Errorf("encode envelope: %w", err)
	}
	return b, env, nil
}

// Decode parses an envelope body. A decode failure is terminal: redelivery
// cannot fix a malformed payload, so consumers must ack-and-drop.
func Decode(body []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType == "" {
		return Envelope{}, fmt.Errorf("decode envelope: missing event_type")
	}
	return env, nil
}

// Bind maps the envelope payload onto a typed event struct.
func (e Envelope) Bind(v interface{}) error {
	b, err := json.Marshal(e.Payload)
	if err != nil {
		return fmt.Errorf("bind payload: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("bind payload: %w", err)
	}
	return nil
}
