package model

import (
	"github.com/google/uuid"
)

const (
	BookingStatusPending   = "pending"
	BookingStatusApproved  = "approved"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
)

type TrainerBooking struct {
	Model         `gorm:"embedded"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:char(36);index"`
	TrainerUserID uuid.UUID `json:"trainer_user_id" gorm:"type:char(36);index"`
	Status        string    `json:"status" gorm:"size:20;default:'pending'"`
}

// ChatChannel is opened exactly once when a booking is approved. The unique
// index on booking_id is the second line of defense behind the pending-check
// in the booking repo.
type ChatChannel struct {
	Model         `gorm:"embedded"`
	BookingID     uuid.UUID `json:"booking_id" gorm:"type:char(36);uniqueIndex;not null"`
	UserID        uuid.UUID `json:"user_id" gorm:"type:char(36);index"`
	TrainerUserID uuid.UUID `json:"trainer_user_id" gorm:"type:char(36);index"`
}
