package models

import "time"

// User represents application user.
type User struct {
	ID           uint      `gorm:"primaryKey"`
	Name         string    `gorm:"size:64;not null"`
	Email        string    `gorm:"size:128;uniqueIndex;not null"`
	PasswordHash string    `gorm:"size:255;not null"`
	Title        string    `gorm:"size:64"`
	AvatarURL    string    `gorm:"size:255"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	FailedLoginAttempts int        `gorm:"default:0"`
	LockedUntil         *time.Time `gorm:"index"`
	LastLoginAt         *time.Time
	LastLoginIP         string `gorm:"size:64"`

	// soft lifecycle: accounts are deactivated, never hard-deleted
	DeactivatedAt *time.Time `gorm:"index"`
}
