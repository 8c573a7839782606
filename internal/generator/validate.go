package generator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var allowedIntensities = map[string]bool{
	"low":    true,
	"medium": true,
	"high":   true,
}

var allowedMealTypes = map[string]bool{
	"breakfast": true,
	"lunch":     true,
	"dinner":    true,
}

// ValidateWorkout checks a workout response against the constraints it was
// generated for. Any failure here is a contract violation, never retried.
func ValidateWorkout(resp *WorkoutResponse, req WorkoutRequest) error {
	if len(resp.Sessions) == 0 {
		return &ContractError{Reason: "sessions missing"}
	}

	exercises := resp.Sessions[0].Exercises
	if len(exercises) != req.ExerciseCount {
		return &ContractError{Reason: fmt.Sprintf("expected %d exercises, got %d", req.ExerciseCount, len(exercises))}
	}

	total := decimal.Zero
	for _, e := range exercises {
		if e.Name == "" {
			return &ContractError{Reason: "exercise name missing"}
		}
		if e.DurationSec <= 0 {
			return &ContractError{Reason: "exercise duration must be positive"}
		}
		if !allowedIntensities[e.Intensity] {
			return &ContractError{Reason: "invalid intensity: " + e.Intensity}
		}
		total = total.Add(decimal.NewFromInt(int64(e.DurationSec)))
	}

	minTotal := decimal.NewFromInt(int64(req.MinDurationMin)).Mul(decimal.NewFromInt(60))
	maxTotal := decimal.NewFromInt(int64(req.MaxDurationMin)).Mul(decimal.NewFromInt(60))
	if total.LessThan(minTotal) || total.GreaterThan(maxTotal) {
		return &ContractError{Reason: fmt.Sprintf("total duration %ss outside %d-%d min", total.String(), req.MinDurationMin, req.MaxDurationMin)}
	}

	if resp.Version == "" {
		return &ContractError{Reason: "version missing"}
	}
	return nil
}

// ValidateDiet checks a diet response: calorie target inside the requested
// bounds, one meal per allowed slot, macros present.
func ValidateDiet(resp *DietResponse, req DietRequest) error {
	if resp.DailyCalories < req.DailyCaloriesMin || resp.DailyCalories > req.DailyCaloriesMax {
		return &ContractError{Reason: fmt.Sprintf("daily calories %d outside %d-%d", resp.DailyCalories, req.DailyCaloriesMin, req.DailyCaloriesMax)}
	}
	if len(resp.Meals) == 0 {
		return &ContractError{Reason: "meals missing"}
	}

	seen := map[string]bool{}
	for _, m := range resp.Meals {
		if !allowedMealTypes[m.Type] {
			return &ContractError{Reason: "invalid meal type: " + m.Type}
		}
		if seen[m.Type] {
			return &ContractError{Reason: "duplicate meal type: " + m.Type}
		}
		seen[m.Type] = true
		if m.Calories <= 0 {
			return &ContractError{Reason: "meal calories must be positive"}
		}
	}
	if len(seen) != len(allowedMealTypes) {
		return &ContractError{Reason: fmt.Sprintf("expected %d meals, got %d", len(allowedMealTypes), len(seen))}
	}

	if resp.Macros.ProteinG <= 0 || resp.Macros.CarbsG <= 0 || resp.Macros.FatG <= 0 {
		return &ContractError{Reason: "macros missing"}
	}
	if resp.Version == "" {
		return &ContractError{Reason: "version missing"}
	}
	return nil
}

// WeeklyCalories sums the per-meal estimates into a weekly total using
// exact decimal arithmetic, rounding half-up to whole calories at the end.
func WeeklyCalories(resp *DietResponse) int64 {
	daily := decimal.Zero
	for _, m := range resp.Meals {
		daily = daily.Add(decimal.NewFromInt(int64(m.Calories)))
	}
	weekly := daily.Mul(decimal.NewFromInt(7))
	return weekly.Round(0).IntPart()
}

// WeeklyDurationMin converts the summed exercise seconds of one session,
// repeated daily for a week, into whole minutes (half-up).
func WeeklyDurationMin(resp *WorkoutResponse) int64 {
	if len(resp.Sessions) == 0 {
		return 0
	}
	total := decimal.Zero
	for _, e := range resp.Sessions[0].Exercises {
		total = total.Add(decimal.NewFromInt(int64(e.DurationSec)))
	}
	weekly := total.Mul(decimal.NewFromInt(7)).Div(decimal.NewFromInt(60))
	return weekly.Round(0).IntPart()
}
