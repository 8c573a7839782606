package repo

import (
	"context"
	"errors"
	"time"

	"github.com/adwaidhmp/backend/internal/model"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

// GetOrCreate makes sure a profile row exists for the user. Defaults are
// fixed; incoming event payload fields are never merged in, so a duplicate
// delivery can neither create a second row nor overwrite an existing one.
func (s *ProfileStore) GetOrCreate(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile := model.UserProfile{
		UserID:            userID,
		ProfileCompleted:  false,
		DietConstraints:   datatypes.JSON([]byte("[]")),
		Allergies:         datatypes.JSON([]byte("[]")),
		MedicalConditions: datatypes.JSON([]byte("[]")),
	}

	res := s.db.WithContext(ctx).
		Where(model.UserProfile{UserID: userID}).
		Attrs(profile).
		FirstOrCreate(&profile)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			// lost the race to a concurrent delivery, row exists now
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Snapshot reads the profile as it is right now. Generation always works
// from a fresh snapshot, never from state cached in the triggering event.
func (s *ProfileStore) Snapshot(ctx context.Context, userID uuid.UUID) (*model.UserProfile, error) {
	var profile model.UserProfile
	err := s.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// RecordWeight stores the log entry and moves the profile's current weight
// in one transaction.
func (s *ProfileStore) RecordWeight(ctx context.Context, userID uuid.UUID, weightKg float64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry := model.WeightLog{
			UserID:   userID,
			WeightKg: weightKg,
			LoggedAt: time.Now().UTC(),
		}
		if err := tx.Create(&entry).Error; err != nil {
			logrus.WithError(err).WithField("user_id", userID).Error("Failed to create weight log")
			return err
		}
		return tx.Model(&model.UserProfile{}).
			Where("user_id = ?", userID).
			Update("weight_kg", weightKg).Error
	})
}

type TrainerStore struct {
	db *gorm.DB
}

func NewTrainerStore(db *gorm.DB) *TrainerStore {
	return &TrainerStore{db: db}
}

func (s *TrainerStore) GetOrCreate(ctx context.Context, userID uuid.UUID) (bool, error) {
	profile := model.TrainerProfile{
		UserID:      userID,
		Bio:         "",
		Specialties: datatypes.JSON([]byte("[]")),
		IsCompleted: false,
	}

	res := s.db.WithContext(ctx).
		Where(model.TrainerProfile{UserID: userID}).
		Attrs(profile).
		FirstOrCreate(&profile)
	if res.Error != nil {
		if isDuplicateKey(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
