package handler

import (
	"github.com/adwaidhmp/backend/internal/event"
	"github.com/adwaidhmp/backend/lib/rabbit"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type UpdateWeightRequest struct {
	UserID   string  `json:"user_id"`
	WeightKg float64 `json:"weight_kg"`
}

// UpdateWeight records a weight entry and emits weight.updated so the diet
// regeneration consumer picks it up. The write commits first; the event is
// dispatched after, so a broker outage loses the regeneration trigger but
// never the weight itself.
func UpdateWeight(c *fiber.Ctx) error {
	var req UpdateWeightRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "invalid request body"})
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "user_id must be a valid uuid"})
	}
	if req.WeightKg <= 0 || req.WeightKg > 500 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "weight_kg must be positive"})
	}

	if err := profiles.RecordWeight(c.Context(), userID, req.WeightKg); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": false, "error": err.Error()})
	}

	env := event.NewEnvelope(event.TypeWeightUpdated, event.Map(event.WeightUpdated{
		UserID:   req.UserID,
		WeightKg: req.WeightKg,
	}))
	if err := dispatcher.Publish(rabbit.BrokerConfig.RouteWeightUpdated, env); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to dispatch weight.updated")
	}

	return c.JSON(fiber.Map{"status": true, "message": "Weight recorded"})
}
