package repo

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/adwaidhmp/backend/internal/model"

	"github.com/DATA-DOG/go-sqlmock"
	driver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      conn,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestIsDuplicateKey(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"mysql errno 1062", &driver.MySQLError{Number: 1062}, true},
		{"wrapped errno 1062", fmt.Errorf("create plan: %w", &driver.MySQLError{Number: 1062}), true},
		{"gorm duplicated key", gorm.ErrDuplicatedKey, true},
		{"other mysql errno", &driver.MySQLError{Number: 1064}, false},
		{"unrelated error", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isDuplicateKey(tt.err))
		})
	}
}

func TestCreatePendingDuplicateBecomesErrPlanExists(t *testing.T) {
	db, mock := newTestDB(t)
	store := NewPlanStore(db)

	mock.ExpectExec("INSERT INTO `plans`").
		WillReturnError(&driver.MySQLError{Number: 1062, Message: "Duplicate entry"})

	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	_, err := store.CreatePending(context.Background(), uuid.New(), weekStart, weekStart.AddDate(0, 0, 6), model.PlanKindDiet, "")
	assert.ErrorIs(t, err, ErrPlanExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePendingInsertsPendingRow(t *testing.T) {
	db, mock := newTestDB(t)
	store := NewPlanStore(db)

	mock.ExpectExec("INSERT INTO `plans`").
		WillReturnResult(sqlmock.NewResult(1, 1))

	userID := uuid.New()
	weekStart := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	p, err := store.CreatePending(context.Background(), userID, weekStart, weekStart.AddDate(0, 0, 6), model.PlanKindWorkout, "cardio")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.Equal(t, model.PlanStatusPending, p.Status)
	assert.Equal(t, "cardio", p.WorkoutType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkReadySecondApplicationIsNoOp(t *testing.T) {
	db, mock := newTestDB(t)
	store := NewPlanStore(db)
	planID := uuid.New()
	payload := datatypes.JSON([]byte(`{"daily_calories":1800}`))

	mock.ExpectExec("UPDATE `plans`").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.MarkReady(context.Background(), planID, payload, "v1"))

	// the plan already left pending, so the guarded update touches no rows
	mock.ExpectExec("UPDATE `plans`").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.MarkReady(context.Background(), planID, payload, "v1"), ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkFailedAfterTransitionIsNoOp(t *testing.T) {
	db, mock := newTestDB(t)
	store := NewPlanStore(db)

	mock.ExpectExec("UPDATE `plans`").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.MarkFailed(context.Background(), uuid.New()), ErrNotPending)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFoundReturnsNil(t *testing.T) {
	db, mock := newTestDB(t)
	store := NewPlanStore(db)

	mock.ExpectQuery("SELECT \\* FROM `plans`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	p, err := store.GetByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByUserFiltersByKind(t *testing.T) {
	db, mock := newTestDB(t)
	store := NewPlanStore(db)
	userID := uuid.New()
	planID := uuid.New()

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `plans` WHERE user_id = \\? AND kind = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT \\* FROM `plans` WHERE user_id = \\? AND kind = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "kind", "status"}).
			AddRow(planID.String(), userID.String(), model.PlanKindDiet, model.PlanStatusReady))

	plans, total, err := store.ListByUser(context.Background(), userID, model.PlanKindDiet, 10, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, plans, 1)
	assert.Equal(t, model.PlanKindDiet, plans[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}
