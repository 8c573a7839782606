package handler

import (
	"errors"
	"time"

	"github.com/adwaidhmp/backend/internal/model"
	"github.com/adwaidhmp/backend/internal/plan"
	"github.com/adwaidhmp/backend/internal/repo"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var workoutTypes = map[string]bool{
	"cardio":   true,
	"strength": true,
	"mixed":    true,
}

type TriggerPlanRequest struct {
	UserID      string `json:"user_id"`
	WorkoutType string `json:"workout_type,omitempty"`
}

// TriggerWorkoutPlan opens this week's workout generation. Returns 202 with
// the pending plan, or 200 with the existing plan when one already covers
// the week.
func TriggerWorkoutPlan(c *fiber.Ctx) error {
	var req TriggerPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "invalid request body"})
	}
	if req.WorkoutType == "" {
		req.WorkoutType = "mixed"
	}
	if !workoutTypes[req.WorkoutType] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "workout_type must be cardio, strength or mixed"})
	}
	return triggerPlan(c, req, model.PlanKindWorkout)
}

// TriggerDietPlan opens this week's diet generation.
func TriggerDietPlan(c *fiber.Ctx) error {
	var req TriggerPlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "invalid request body"})
	}
	req.WorkoutType = ""
	return triggerPlan(c, req, model.PlanKindDiet)
}

func triggerPlan(c *fiber.Ctx, req TriggerPlanRequest, kind string) error {
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "user_id must be a valid uuid"})
	}

	weekStart, weekEnd := plan.WeekRange(time.Now())
	p, err := plans.CreatePending(c.Context(), userID, weekStart, weekEnd, kind, req.WorkoutType)
	if errors.Is(err, repo.ErrPlanExists) {
		existing, gerr := plans.GetActive(c.Context(), userID, kind, time.Now())
		if gerr != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": false, "error": gerr.Error()})
		}
		if existing != nil && existing.Status == model.PlanStatusPending {
			// the row exists but its job may have been lost, enqueue again
			if jerr := jobs.Enqueue(existing.ID, existing.Kind); jerr != nil {
				logrus.WithError(jerr).WithField("plan_id", existing.ID).Warn("Failed to re-enqueue pending plan")
			}
		}
		return c.JSON(fiber.Map{"status": true, "data": existing})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": false, "error": err.Error()})
	}

	if err := jobs.Enqueue(p.ID, p.Kind); err != nil {
		logrus.WithError(err).WithField("plan_id", p.ID).Error("Failed to enqueue generation job")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": false, "error": "generation queue is full, try again"})
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": true, "data": p})
}

// GetCurrentWorkoutPlan returns the workout plan whose week contains today.
func GetCurrentWorkoutPlan(c *fiber.Ctx) error {
	return getCurrentPlan(c, model.PlanKindWorkout)
}

func GetCurrentDietPlan(c *fiber.Ctx) error {
	return getCurrentPlan(c, model.PlanKindDiet)
}

func getCurrentPlan(c *fiber.Ctx, kind string) error {
	userID, err := uuid.Parse(c.Query("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "user_id must be a valid uuid"})
	}

	p, err := plans.GetActive(c.Context(), userID, kind, time.Now())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": false, "error": err.Error()})
	}
	if p == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": false, "error": "no plan for this week"})
	}
	return c.JSON(fiber.Map{"status": true, "data": p})
}

func ListPlans(c *fiber.Ctx) error {
	var query repo.Query
	query.Parse(c)
	if query.UserID == uuid.Nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "error": "user_id is required"})
	}

	items, total, err := plans.ListByUser(c.Context(), query.UserID, query.Kind, query.Limit, query.Page)
	if err != nil {
		return c.JSON(fiber.Map{"status": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{"status": true, "data": items, "total": total})
}
