package router

import (
	"fmt"

	mainapp "github.com/adwaidhmp/backend/app"
	handler "github.com/adwaidhmp/backend/internal/handler"
	"github.com/adwaidhmp/backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func Setup() {
	app := fiber.New(fiber.Config{})
	app.Use(cors.New())
	app.Use(recover.New())
	setupRouter(app)
	port := mainapp.Config("WEB_PORT")
	if len(port) == 0 {
		port = "3636"
	}
	fmt.Println("port=", port)
	app.Listen(":" + port)
}

func setupRouter(fiber_app *fiber.App) {
	api := fiber_app.Group("/api", logger.New())

	api.Get("/test.json", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": true, "message": "Pong"})
	})

	// Plans
	api.Post("/plans/workout", handler.TriggerWorkoutPlan)
	api.Post("/plans/diet", handler.TriggerDietPlan)
	api.Get("/plans/workout/current", handler.GetCurrentWorkoutPlan)
	api.Get("/plans/diet/current", handler.GetCurrentDietPlan)
	api.Get("/plans", handler.ListPlans)

	// Weight tracking
	api.Post("/weight", handler.UpdateWeight)

	// Trainer bookings
	api.Post("/bookings", handler.CreateBooking)
	api.Post("/bookings/:id/decision", handler.DecideBooking)

	api.Post("/device_token", handler.CreateTokenDevice)

	internal := fiber_app.Group("/internal", middleware.APIKeyAuth())
	internal.Get("/metrics", handler.GetMetrics)
}
