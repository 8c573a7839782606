package repo

import (
	"context"
	"errors"
	"time"

	"github.com/adwaidhmp/backend/internal/model"

	driver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	// ErrPlanExists means a plan already exists for this user, week and
	// kind. Callers must treat it as "generation already in progress or
	// done", not as a failure.
	ErrPlanExists = errors.New("plan already exists for this week")

	// ErrNotPending means the status transition was a no-op because the
	// plan already left pending. Safe to ignore after a duplicate job.
	ErrNotPending = errors.New("plan is not pending")
)

type PlanStore struct {
	db *gorm.DB
}

func NewPlanStore(db *gorm.DB) *PlanStore {
	return &PlanStore{db: db}
}

// CreatePending inserts the week's plan row in status pending. The composite
// unique index on (user_id, week_start, kind) turns concurrent triggers into
// exactly one row; the losers get ErrPlanExists.
func (s *PlanStore) CreatePending(ctx context.Context, userID uuid.UUID, weekStart, weekEnd time.Time, kind, workoutType string) (*model.Plan, error) {
	plan := &model.Plan{
		UserID:      userID,
		WeekStart:   weekStart,
		WeekEnd:     weekEnd,
		Kind:        kind,
		Status:      model.PlanStatusPending,
		WorkoutType: workoutType,
	}

	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrPlanExists
		}
		logrus.WithError(err).WithField("user_id", userID).Error("Failed to create pending plan")
		return nil, err
	}
	return plan, nil
}

// MarkReady stores the validated payload and flips status to ready. The
// conditional update on status = pending makes a second application of the
// same result a no-op.
func (s *PlanStore) MarkReady(ctx context.Context, planID uuid.UUID, payload datatypes.JSON, version string) error {
	res := s.db.WithContext(ctx).
		Model(&model.Plan{}).
		Where("id = ? AND status = ?", planID, model.PlanStatusPending).
		Updates(map[string]interface{}{
			"status":  model.PlanStatusReady,
			"payload": payload,
			"version": version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

// MarkFailed flips status to failed, leaving the payload empty. Same
// pending-only guard as MarkReady.
func (s *PlanStore) MarkFailed(ctx context.Context, planID uuid.UUID) error {
	res := s.db.WithContext(ctx).
		Model(&model.Plan{}).
		Where("id = ? AND status = ?", planID, model.PlanStatusPending).
		Update("status", model.PlanStatusFailed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}

func (s *PlanStore) GetByID(ctx context.Context, planID uuid.UUID) (*model.Plan, error) {
	var plan model.Plan
	err := s.db.WithContext(ctx).First(&plan, "id = ?", planID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// GetActive returns the plan of the given kind whose week contains asOf, or
// nil when the user has none.
func (s *PlanStore) GetActive(ctx context.Context, userID uuid.UUID, kind string, asOf time.Time) (*model.Plan, error) {
	var plan model.Plan
	day := asOf.Format("2006-01-02")
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND week_start <= ? AND week_end >= ?", userID, kind, day, day).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByUser pages through a user's plan history, newest week first,
// optionally narrowed to one kind.
func (s *PlanStore) ListByUser(ctx context.Context, userID uuid.UUID, kind string, limit, page int) ([]model.Plan, int64, error) {
	var plans []model.Plan
	var total int64

	q := s.db.WithContext(ctx).Model(&model.Plan{}).Where("user_id = ?", userID)
	if kind != "" {
		q = q.Where("kind = ?", kind)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("week_start DESC").Limit(limit).Offset((page - 1) * limit).Find(&plans).Error
	return plans, total, err
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var mysqlErr *driver.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == 1062
}
