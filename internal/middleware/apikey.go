package middleware

import (
	"crypto/subtle"

	"github.com/adwaidhmp/backend/app"

	"github.com/gofiber/fiber/v2"
)

// APIKeyAuth guards internal routes with the shared service key. A missing
// API_KEY configuration rejects everything, and the comparison is constant
// time so the key cannot be probed byte by byte.
func APIKeyAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		apiKey := c.Get("X-API-KEY")
		expectedAPIKey := app.Config("API_KEY")

		if expectedAPIKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(expectedAPIKey)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": false, "error": "unauthorized"})
		}

		return c.Next()
	}
}
