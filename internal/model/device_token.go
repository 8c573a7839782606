package model

import "github.com/google/uuid"

// DeviceToken lưu thông tin token của từng thiết bị/trình duyệt của user
type DeviceToken struct {
	Model
	UserID      uuid.UUID `json:"user_id" gorm:"type:char(36);index"`
	DeviceToken string    `json:"device_token" gorm:"uniqueIndex;not null"`
	DeviceType  string    `json:"device_type" gorm:"not null"` // mobile, web, ...
	Expired     bool      `json:"expired" gorm:"default:false"`
	System      string    `json:"system"`
}
