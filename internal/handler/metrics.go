package handler

import (
	"github.com/gofiber/fiber/v2"
)

// GetMetrics exposes dispatcher and worker queue counters. Internal only,
// sits behind the API key middleware.
func GetMetrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": true,
		"data": fiber.Map{
			"dispatcher": dispatcher.GetMetrics(),
			"workers":    jobs.GetMetrics(),
		},
	})
}
