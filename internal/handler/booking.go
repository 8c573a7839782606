package handler

import (
	"errors"

	"github.com/adwaidhmp/backend/internal/event"
	"github.com/adwaidhmp/backend/internal/model"
	"github.com/adwaidhmp/backend/internal/repo"
	"github.com/adwaidhmp/backend/lib/rabbit"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type CreateBookingRequest struct {
	UserID        string `json:"user_id"`
	TrainerUserID string `json:"trainer_user_id"`
}

func CreateBooking(c *fiber.Ctx) error {
	var req CreateBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "invalid request body"})
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "user_id must be a valid uuid"})
	}
	trainerUserID, err := uuid.Parse(req.TrainerUserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "trainer_user_id must be a valid uuid"})
	}

	booking, err := bookings.Create(c.Context(), userID, trainerUserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": false, "error": err.Error()})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": true, "data": booking})
}

type DecideBookingRequest struct {
	Decision string `json:"decision"`
}

// DecideBooking publishes the trainer's decision as booking.decided. The
// status transition itself happens in the consumer, so every service bound
// to the routing key sees the same event the local state was built from.
func DecideBooking(c *fiber.Ctx) error {
	bookingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "booking id must be a valid uuid"})
	}

	var req DecideBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "invalid request body"})
	}
	if req.Decision != model.BookingStatusApproved && req.Decision != model.BookingStatusRejected {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "decision must be approved or rejected"})
	}

	booking, err := bookings.GetByID(c.Context(), bookingID)
	if errors.Is(err, repo.ErrBookingNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": false, "error": "booking not found"})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": false, "error": err.Error()})
	}
	if booking.Status != model.BookingStatusPending {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"status": false, "error": "booking already decided"})
	}

	env := event.NewEnvelope(event.TypeBookingDecided, event.Map(event.BookingDecided{
		BookingID:     booking.ID.String(),
		UserID:        booking.UserID.String(),
		TrainerUserID: booking.TrainerUserID.String(),
		Decision:      req.Decision,
	}))
	if err := dispatcher.Publish(rabbit.BrokerConfig.RouteBookingDecided, env); err != nil {
		logrus.WithError(err).WithField("booking_id", bookingID).Error("Failed to dispatch booking.decided")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": false, "error": "could not queue the decision, try again"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": true, "message": "Decision queued"})
}
