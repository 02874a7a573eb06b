package models

import (
	"time"

	"github.com/google/uuid"
)

// UserModel represents the database model for User
type UserModel struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primary_key"`
	Name               string     `gorm:"type:varchar(50);not null"`
	Email              string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"`
	AvatarPublicID     string     `gorm:"type:varchar(255);not null"`
	AvatarSecureURL    string     `gorm:"type:text;not null"`
	Role               string     `gorm:"type:varchar(16);not null"`
	SubscriptionID     string     `gorm:"type:varchar(64);not null"`
	SubscriptionStatus string     `gorm:"type:varchar(32);not null"`
	ResetTokenHash     *string    `gorm:"type:varchar(64);index"`
	ResetTokenExpiry   *time.Time `gorm:"type:timestamptz"`
	CreatedAt          time.Time  `gorm:"not null"`
	UpdatedAt          time.Time  `gorm:"not null"`
}

func (UserModel) TableName() string {
	return "users"
}
