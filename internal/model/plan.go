package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	PlanKindDiet    = "diet"
	PlanKindWorkout = "workout"
)

const (
	PlanStatusPending = "pending"
	PlanStatusReady   = "ready"
	PlanStatusFailed  = "failed"
)

// Plan is one weekly diet or workout recommendation. At most one plan may
// exist per (user, week_start, kind); the composite unique index is what
// stops two concurrent triggers from generating twice.
type Plan struct {
	Model     `gorm:"embedded"`
	UserID    uuid.UUID      `json:"user_id" gorm:"type:char(36);uniqueIndex:idx_plan_user_week_kind;index"`
	WeekStart time.Time      `json:"week_start" gorm:"type:date;uniqueIndex:idx_plan_user_week_kind"`
	WeekEnd   time.Time      `json:"week_end" gorm:"type:date"`
	Kind      string         `json:"kind" gorm:"size:10;uniqueIndex:idx_plan_user_week_kind"`
	Status    string         `json:"status" gorm:"size:10;default:'pending';index"`
	Payload   datatypes.JSON `json:"payload,omitempty"`
	Version   string         `json:"version" gorm:"size:20"`

	// WorkoutType is the requested style (cardio, strength, mixed) for
	// workout plans; empty for diet plans.
	WorkoutType string `json:"workout_type,omitempty" gorm:"size:10"`
}
