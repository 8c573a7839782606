package repo

import (
	"context"

	"github.com/adwaidhmp/backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DeviceTokenStore struct {
	db *gorm.DB
}

func NewDeviceTokenStore(db *gorm.DB) *DeviceTokenStore {
	return &DeviceTokenStore{db: db}
}

func (s *DeviceTokenStore) Create(ctx context.Context, entry model.DeviceToken) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}

// TokensByUserID trả về danh sách device token còn hiệu lực theo user_id
func (s *DeviceTokenStore) TokensByUserID(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var tokens []string
	var deviceTokens []model.DeviceToken
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND expired = ?", userID, false).
		Find(&deviceTokens).Error
	if err != nil {
		return nil, err
	}
	for _, dt := range deviceTokens {
		tokens = append(tokens, dt.DeviceToken)
	}
	return tokens, nil
}
