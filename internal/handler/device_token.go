package handler

import (
	"github.com/adwaidhmp/backend/internal/model"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func CreateTokenDevice(c *fiber.Ctx) error {
	var input struct {
		UserID      string `json:"user_id"`
		DeviceToken string `json:"device_token"`
		DeviceType  string `json:"device_type"`
		System      string `json:"system"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.JSON(fiber.Map{"status": false, "message": "Review your input"})
	}
	userID, err := uuid.Parse(input.UserID)
	if err != nil {
		return c.JSON(fiber.Map{"status": false, "message": "user_id must be a valid uuid"})
	}

	device_token := model.DeviceToken{
		UserID:      userID,
		DeviceToken: input.DeviceToken,
		DeviceType:  input.DeviceType,
		System:      input.System,
	}
	if err := devices.Create(c.Context(), device_token); err != nil {
		return c.JSON(fiber.Map{"status": false, "message": "Can not create token device", "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": true, "message": "Create token device successfully"})
}
