package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents application user.
type User struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"size:64;not null"`
	Email        string    `gorm:"size:255;uniqueIndex;not null"` // stored lower-cased
	PasswordHash string    `gorm:"size:255;not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	FailedLoginAttempts int        `gorm:"default:0"` // consecutive failed logins
	LockedUntil         *time.Time `gorm:"index"`
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`
}

// BeforeCreate assigns a UUID when the caller did not set one.
func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
