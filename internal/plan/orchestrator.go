package plan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/adwaidhmp/backend/app"
	"github.com/adwaidhmp/backend/internal/generator"
	"github.com/adwaidhmp/backend/internal/model"
	"github.com/adwaidhmp/backend/internal/repo"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

// Store is the slice of the plan store the orchestrator needs.
type Store interface {
	GetByID(ctx context.Context, planID uuid.UUID) (*model.Plan, error)
	MarkReady(ctx context.Context, planID uuid.UUID, payload datatypes.JSON, version string) error
	MarkFailed(ctx context.Context, planID uuid.UUID) error
}

// ProfileSource reads the subject's profile at generation time.
type ProfileSource interface {
	Snapshot(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error)
}

// Generator is the external AI service boundary.
type Generator interface {
	GenerateDiet(ctx context.Context, req generator.DietRequest) (*generator.DietResponse, error)
	GenerateWorkout(ctx context.Context, req generator.WorkoutRequest) (*generator.WorkoutResponse, error)
}

// Notifier is told when a plan becomes ready. Implementations must be
// fire-and-forget; a notification failure never fails the plan.
type Notifier interface {
	PlanReady(userID uuid.UUID, plan *model.Plan)
}

// Orchestrator drives one plan from pending to a terminal state: load,
// snapshot, generate, validate, persist. A retryable error is returned to
// the worker runtime without touching plan status, so a later retry still
// finds pending.
type Orchestrator struct {
	store    Store
	profiles ProfileSource
	gen      Generator
	notifier Notifier
	cfg      *app.GeneratorConfig
}

func NewOrchestrator(store Store, profiles ProfileSource, gen Generator, notifier Notifier, cfg *app.GeneratorConfig) *Orchestrator {
	return &Orchestrator{
		store:    store,
		profiles: profiles,
		gen:      gen,
		notifier: notifier,
		cfg:      cfg,
	}
}

// Run executes one generation attempt. Returning nil means the plan reached
// a terminal state or the job was a duplicate; returning an error means the
// failure was transient and the job should be retried.
func (o *Orchestrator) Run(ctx context.Context, planID uuid.UUID) error {
	log := logrus.WithField("plan_id", planID)

	p, err := o.store.GetByID(ctx, planID)
	if err != nil {
		return fmt.Errorf("load plan: %w", err)
	}
	if p == nil {
		log.Warn("Plan not found, dropping job")
		return nil
	}
	if p.Status != model.PlanStatusPending {
		// duplicate job delivery, the first run already finished
		log.WithField("status", p.Status).Debug("Plan not pending, skipping")
		return nil
	}

	profile, err := o.profiles.Snapshot(ctx, p.UserID)
	if err != nil {
		return fmt.Errorf("load profile snapshot: %w", err)
	}
	if profile == nil {
		log.WithField("user_id", p.UserID).Error("Profile missing, failing plan")
		return o.fail(ctx, p, log)
	}

	switch p.Kind {
	case model.PlanKindDiet:
		return o.runDiet(ctx, p, profile, log)
	case model.PlanKindWorkout:
		return o.runWorkout(ctx, p, profile, log)
	default:
		log.WithField("kind", p.Kind).Error("Unknown plan kind, failing plan")
		return o.fail(ctx, p, log)
	}
}

func (o *Orchestrator) runDiet(ctx context.Context, p *model.Plan, profile *model.UserProfile, log *logrus.Entry) error {
	req := o.buildDietRequest(profile)

	resp, err := o.gen.GenerateDiet(ctx, req)
	if err != nil {
		var contractErr *generator.ContractError
		if errors.As(err, &contractErr) {
			log.WithError(err).Warn("Diet generation contract violation")
			return o.fail(ctx, p, log)
		}
		return fmt.Errorf("diet generation: %w", err)
	}

	if err := generator.ValidateDiet(resp, req); err != nil {
		log.WithError(err).Warn("Diet response failed validation")
		return o.fail(ctx, p, log)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"daily_calories":  resp.DailyCalories,
		"weekly_calories": generator.WeeklyCalories(resp),
		"macros":          resp.Macros,
		"meals":           resp.Meals,
	})
	if err != nil {
		log.WithError(err).Error("Failed to marshal diet payload, failing plan")
		return o.fail(ctx, p, log)
	}

	return o.ready(ctx, p, payload, resp.Version, log)
}

func (o *Orchestrator) runWorkout(ctx context.Context, p *model.Plan, profile *model.UserProfile, log *logrus.Entry) error {
	workoutType := p.WorkoutType
	if workoutType == "" {
		workoutType = "mixed"
	}
	req := generator.WorkoutRequest{
		Goal:           profile.Goal,
		Experience:     profile.Experience,
		ActivityLevel:  profile.ActivityLevel,
		WorkoutType:    workoutType,
		ExerciseCount:  o.cfg.ExerciseCount,
		MinDurationMin: o.cfg.MinDurationMin,
		MaxDurationMin: o.cfg.MaxDurationMin,
	}

	resp, err := o.gen.GenerateWorkout(ctx, req)
	if err != nil {
		var contractErr *generator.ContractError
		if errors.As(err, &contractErr) {
			log.WithError(err).Warn("Workout generation contract violation")
			return o.fail(ctx, p, log)
		}
		return fmt.Errorf("workout generation: %w", err)
	}

	if err := generator.ValidateWorkout(resp, req); err != nil {
		log.WithError(err).Warn("Workout response failed validation")
		return o.fail(ctx, p, log)
	}

	payload, err := json.Marshal(map[string]interface{}{
		"sessions":            resp.Sessions,
		"weekly_duration_min": generator.WeeklyDurationMin(resp),
	})
	if err != nil {
		log.WithError(err).Error("Failed to marshal workout payload, failing plan")
		return o.fail(ctx, p, log)
	}

	return o.ready(ctx, p, payload, resp.Version, log)
}

func (o *Orchestrator) buildDietRequest(profile *model.UserProfile) generator.DietRequest {
	req := generator.DietRequest{
		Gender:            profile.Gender,
		HeightCm:          profile.HeightCm,
		WeightKg:          profile.WeightKg,
		Goal:              profile.Goal,
		ActivityLevel:     profile.ActivityLevel,
		DietConstraints:   jsonStrings(profile.DietConstraints),
		Allergies:         jsonStrings(profile.Allergies),
		MedicalConditions: jsonStrings(profile.MedicalConditions),
		DietMode:          "normal",
		DailyCaloriesMin:  o.cfg.DailyCaloriesMin,
		DailyCaloriesMax:  o.cfg.DailyCaloriesMax,
	}
	if profile.DOB != nil {
		req.DOB = profile.DOB.Format("2006-01-02")
	}
	if len(req.MedicalConditions) > 0 {
		req.DietMode = "medical_safe"
	}
	return req
}

// ready persists the result. ErrNotPending means a concurrent run beat us
// to the transition, which is the idempotency guard doing its job.
func (o *Orchestrator) ready(ctx context.Context, p *model.Plan, payload []byte, version string, log *logrus.Entry) error {
	err := o.store.MarkReady(ctx, p.ID, datatypes.JSON(payload), version)
	if errors.Is(err, repo.ErrNotPending) {
		log.Debug("Plan already transitioned, result discarded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark ready: %w", err)
	}

	log.WithFields(logrus.Fields{
		"kind":    p.Kind,
		"version": version,
	}).Info("Plan ready")

	if o.notifier != nil {
		o.notifier.PlanReady(p.UserID, p)
	}
	return nil
}

func (o *Orchestrator) fail(ctx context.Context, p *model.Plan, log *logrus.Entry) error {
	err := o.store.MarkFailed(ctx, p.ID)
	if errors.Is(err, repo.ErrNotPending) {
		log.Debug("Plan already transitioned, failure discarded")
		return nil
	}
	if err != nil {
		return fmt.Errorf("mark failed: %w", err)
	}
	log.WithField("kind", p.Kind).Warn("Plan failed")
	return nil
}

func jsonStrings(raw []byte) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}
