package event

import "encoding/json"

// Event types carried in envelopes. Routing keys mirror the type names and
// are configured on the broker client.
const (
	TypeUserCreated       = "user.created"
	TypeTrainerRegistered = "trainer.registered"
	TypeWeightUpdated     = "weight.updated"
	TypeBookingDecided    = "booking.decided"
)

type UserCreated struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type TrainerRegistered struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
}

type WeightUpdated struct {
	UserID   string  `json:"user_id"`
	WeightKg float64 `json:"weight_kg"`
}

type BookingDecided struct {
	BookingID     string `json:"booking_id"`
	UserID        string `json:"user_id"`
	TrainerUserID string `json:"trainer_user_id"`
	Decision      string `json:"decision"`
}

// Map flattens a typed payload for envelope construction without losing the
// struct tags as the single source of field names.
func Map(v interface{}) map[string]interface{} {
	b, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]interface{}{}
	}
	return out
}
