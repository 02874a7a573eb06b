package models

import (
	"time"

	"github.com/google/uuid"
)

type CourseModel struct {
	ID                uuid.UUID      `gorm:"type:uuid;primary_key"`
	Title             string         `gorm:"type:varchar(60);not null"`
	Description       string         `gorm:"type:varchar(200);not null"`
	Category          string         `gorm:"type:varchar(64);not null"`
	CreatedBy         string         `gorm:"type:varchar(64);not null"`
	ThumbnailPublicID string         `gorm:"type:varchar(255);not null"`
	ThumbnailURL      string         `gorm:"type:text;not null"`
	NumberOfLectures  int            `gorm:"not null"`
	Lectures          []LectureModel `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`
	CreatedAt         time.Time      `gorm:"not null"`
	UpdatedAt         time.Time      `gorm:"not null"`
}

func (CourseModel) TableName() string {
	return "courses"
}

type LectureModel struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key"`
	CourseID      uuid.UUID `gorm:"type:uuid;not null;index"`
	Title         string    `gorm:"type:varchar(255);not null"`
	Description   string    `gorm:"type:text;not null"`
	MediaPublicID string    `gorm:"type:varchar(255);not null"`
	MediaURL      string    `gorm:"type:text;not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

func (LectureModel) TableName() string {
	return "lectures"
}
