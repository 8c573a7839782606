package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/adwaidhmp/backend/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrBookingNotFound means the decision event references a booking this
// service has never seen. Not retryable.
var ErrBookingNotFound = errors.New("booking not found")

type BookingStore struct {
	db *gorm.DB
}

func NewBookingStore(db *gorm.DB) *BookingStore {
	return &BookingStore{db: db}
}

func (s *BookingStore) Create(ctx context.Context, userID, trainerUserID uuid.UUID) (*model.TrainerBooking, error) {
	booking := &model.TrainerBooking{
		UserID:        userID,
		TrainerUserID: trainerUserID,
		Status:        model.BookingStatusPending,
	}
	if err := s.db.WithContext(ctx).Create(booking).Error; err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *BookingStore) GetByID(ctx context.Context, bookingID uuid.UUID) (*model.TrainerBooking, error) {
	var booking model.TrainerBooking
	err := s.db.WithContext(ctx).First(&booking, "id = ?", bookingID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// ApplyDecision moves a pending booking to the decided status and, on
// approval, opens the chat channel. The read-check-write runs inside one
// transaction with a row lock so two concurrent deliveries of the same
// event cannot both pass the pending check. A booking that has already
// transitioned makes the call a no-op with applied=false.
func (s *BookingStore) ApplyDecision(ctx context.Context, bookingID uuid.UUID, decision string) (bool, error) {
	if decision != model.BookingStatusApproved && decision != model.BookingStatusRejected {
		return false, fmt.Errorf("invalid booking decision: %s", decision)
	}

	applied := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var booking model.TrainerBooking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&booking, "id = ?", bookingID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookingNotFound
		}
		if err != nil {
			return err
		}

		if booking.Status != model.BookingStatusPending {
			logrus.WithFields(logrus.Fields{
				"booking_id": bookingID,
				"status":     booking.Status,
			}).Debug("Booking already decided, skipping")
			return nil
		}

		if err := tx.Model(&booking).Update("status", decision).Error; err != nil {
			return err
		}

		if decision == model.BookingStatusApproved {
			channel := model.ChatChannel{
				BookingID:     booking.ID,
				UserID:        booking.UserID,
				TrainerUserID: booking.TrainerUserID,
			}
			if err := tx.Create(&channel).Error; err != nil {
				return err
			}
		}

		applied = true
		return nil
	})
	return applied, err
}
