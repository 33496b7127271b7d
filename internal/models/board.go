package models

import "time"

// Board is a named task column group inside a workspace.
type Board struct {
	ID          uint   `gorm:"primaryKey"`
	WorkspaceID uint   `gorm:"index;not null"`
	Name        string `gorm:"size:64;not null"`
	Position    int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
