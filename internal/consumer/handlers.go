package consumer

import (
	"context"
	"errors"
	"time"

	"github.com/adwaidhmp/backend/app"
	"github.com/adwaidhmp/backend/internal/event"
	"github.com/adwaidhmp/backend/internal/model"
	"github.com/adwaidhmp/backend/internal/plan"
	"github.com/adwaidhmp/backend/internal/repo"
	"github.com/adwaidhmp/backend/lib/rabbit"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Store interfaces are deliberately narrow so tests can stand in fakes.

type Profiles interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Trainers interface {
	GetOrCreate(ctx context.Context, userID uuid.UUID) (bool, error)
}

type Bookings interface {
	ApplyDecision(ctx context.Context, bookingID uuid.UUID, decision string) (bool, error)
}

type Plans interface {
	CreatePending(ctx context.Context, userID uuid.UUID, weekStart, weekEnd time.Time, kind, workoutType string) (*model.Plan, error)
	GetActive(ctx context.Context, userID uuid.UUID, kind string, asOf time.Time) (*model.Plan, error)
}

type Jobs interface {
	Enqueue(planID uuid.UUID, kind string) error
}

// Handlers maps broker deliveries onto idempotent local mutations. Every
// handler tolerates duplicate and out-of-order delivery: get-or-create for
// profile events, pending-only transitions for bookings, the plan unique
// index for generation triggers.
type Handlers struct {
	profiles Profiles
	trainers Trainers
	bookings Bookings
	plans    Plans
	jobs     Jobs
	now      func() time.Time
}

func NewHandlers(profiles Profiles, trainers Trainers, bookings Bookings, plans Plans, jobs Jobs) *Handlers {
	return &Handlers{
		profiles: profiles,
		trainers: trainers,
		bookings: bookings,
		plans:    plans,
		jobs:     jobs,
		now:      time.Now,
	}
}

func (h *Handlers) HandleUserCreated(env event.Envelope) rabbit.Outcome {
	log := logrus.WithField("message_id", env.MessageID)

	var payload event.UserCreated
	if err := env.Bind(&payload); err != nil {
		log.WithError(err).Warn("Invalid user.created payload, dropping")
		return rabbit.Drop
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		log.WithField("user_id", payload.UserID).Warn("user.created without valid user_id, dropping")
		return rabbit.Drop
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.DBTimeout)
	defer cancel()

	created, err := h.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to ensure user profile, requeuing")
		return rabbit.Requeue
	}
	if created {
		log.WithField("user_id", userID).Info("Created user profile")
	}
	return rabbit.Ack
}

func (h *Handlers) HandleTrainerRegistered(env event.Envelope) rabbit.Outcome {
	log := logrus.WithField("message_id", env.MessageID)

	var payload event.TrainerRegistered
	if err := env.Bind(&payload); err != nil {
		log.WithError(err).Warn("Invalid trainer.registered payload, dropping")
		return rabbit.Drop
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		log.WithField("user_id", payload.UserID).Warn("trainer.registered without valid user_id, dropping")
		return rabbit.Drop
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.DBTimeout)
	defer cancel()

	created, err := h.trainers.GetOrCreate(ctx, userID)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to ensure trainer profile, requeuing")
		return rabbit.Requeue
	}
	if created {
		log.WithField("user_id", userID).Info("Created trainer profile")
	}
	return rabbit.Ack
}

// HandleWeightUpdated opens this week's diet regeneration: one pending plan
// plus one job. The weight itself was already recorded by whoever published
// the event; recording it again here would double the log on redelivery. A
// plan that already exists means generation is in progress or done, which is
// success here. A still-pending plan gets its job re-enqueued in case the
// original enqueue was lost.
func (h *Handlers) HandleWeightUpdated(env event.Envelope) rabbit.Outcome {
	log := logrus.WithField("message_id", env.MessageID)

	var payload event.WeightUpdated
	if err := env.Bind(&payload); err != nil {
		log.WithError(err).Warn("Invalid weight.updated payload, dropping")
		return rabbit.Drop
	}
	userID, err := uuid.Parse(payload.UserID)
	if err != nil {
		log.WithField("user_id", payload.UserID).Warn("weight.updated without valid user_id, dropping")
		return rabbit.Drop
	}
	if payload.WeightKg <= 0 {
		log.WithField("weight_kg", payload.WeightKg).Warn("weight.updated with invalid weight, dropping")
		return rabbit.Drop
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.DBTimeout)
	defer cancel()

	weekStart, weekEnd := plan.WeekRange(h.now())
	p, err := h.plans.CreatePending(ctx, userID, weekStart, weekEnd, model.PlanKindDiet, "")
	if errors.Is(err, repo.ErrPlanExists) {
		existing, gerr := h.plans.GetActive(ctx, userID, model.PlanKindDiet, h.now())
		if gerr != nil {
			log.WithError(gerr).Error("Failed to load existing plan, requeuing")
			return rabbit.Requeue
		}
		if existing != nil && existing.Status == model.PlanStatusPending {
			if jerr := h.jobs.Enqueue(existing.ID, existing.Kind); jerr != nil {
				log.WithError(jerr).Warn("Failed to re-enqueue pending plan job")
			}
		}
		log.WithField("user_id", userID).Debug("Diet plan already exists for this week")
		return rabbit.Ack
	}
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Error("Failed to create pending diet plan, requeuing")
		return rabbit.Requeue
	}

	if err := h.jobs.Enqueue(p.ID, p.Kind); err != nil {
		// plan row exists but no job: requeue so the redelivery path
		// above re-enqueues it
		log.WithError(err).WithField("plan_id", p.ID).Error("Failed to enqueue generation job, requeuing")
		return rabbit.Requeue
	}

	log.WithFields(logrus.Fields{
		"user_id": userID,
		"plan_id": p.ID,
	}).Info("Diet regeneration queued")
	return rabbit.Ack
}

// HandleBookingDecided applies a trainer's decision exactly once. The store
// only transitions bookings still in pending, so redelivery cannot
// double-create the downstream chat channel.
func (h *Handlers) HandleBookingDecided(env event.Envelope) rabbit.Outcome {
	log := logrus.WithField("message_id", env.MessageID)

	var payload event.BookingDecided
	if err := env.Bind(&payload); err != nil {
		log.WithError(err).Warn("Invalid booking.decided payload, dropping")
		return rabbit.Drop
	}
	bookingID, err := uuid.Parse(payload.BookingID)
	if err != nil {
		log.WithField("booking_id", payload.BookingID).Warn("booking.decided without valid booking_id, dropping")
		return rabbit.Drop
	}
	if payload.Decision != model.BookingStatusApproved && payload.Decision != model.BookingStatusRejected {
		log.WithField("decision", payload.Decision).Warn("booking.decided with invalid decision, dropping")
		return rabbit.Drop
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.DBTimeout)
	defer cancel()

	applied, err := h.bookings.ApplyDecision(ctx, bookingID, payload.Decision)
	if errors.Is(err, repo.ErrBookingNotFound) {
		log.WithField("booking_id", bookingID).Warn("booking.decided for unknown booking, dropping")
		return rabbit.Drop
	}
	if err != nil {
		log.WithError(err).WithField("booking_id", bookingID).Error("Failed to apply booking decision, requeuing")
		return rabbit.Requeue
	}

	if applied {
		log.WithFields(logrus.Fields{
			"booking_id": bookingID,
			"decision":   payload.Decision,
		}).Info("Booking decision applied")
	} else {
		log.WithField("booking_id", bookingID).Debug("Booking already decided, skipping")
	}
	return rabbit.Ack
}
