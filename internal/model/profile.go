package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UserProfile struct {
	Model             `gorm:"embedded"`
	UserID            uuid.UUID      `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"`
	DOB               *time.Time     `json:"dob" gorm:"type:date"`
	Gender            string         `json:"gender" gorm:"size:10"`
	HeightCm          float64        `json:"height_cm"`
	WeightKg          float64        `json:"weight_kg"`
	Goal              string         `json:"goal" gorm:"size:20;index"`
	ActivityLevel     string         `json:"activity_level" gorm:"size:20"`
	Experience        string         `json:"experience" gorm:"size:20"`
	DietConstraints   datatypes.JSON `json:"diet_constraints"`
	Allergies         datatypes.JSON `json:"allergies"`
	MedicalConditions datatypes.JSON `json:"medical_conditions"`
	ProfileCompleted  bool           `json:"profile_completed" gorm:"default:false"`
}

type TrainerProfile struct {
	Model           `gorm:"embedded"`
	UserID          uuid.UUID      `json:"user_id" gorm:"type:char(36);uniqueIndex;not null"`
	Bio             string         `json:"bio" gorm:"type:text"`
	Specialties     datatypes.JSON `json:"specialties"`
	ExperienceYears int            `json:"experience_years" gorm:"default:0"`
	IsCompleted     bool           `json:"is_completed" gorm:"default:false"`
}

type WeightLog struct {
	Model    `gorm:"embedded"`
	UserID   uuid.UUID `json:"user_id" gorm:"type:char(36);index"`
	WeightKg float64   `json:"weight_kg"`
	LoggedAt time.Time `json:"logged_at" gorm:"type:date"`
}
