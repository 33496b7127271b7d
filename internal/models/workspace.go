package models

import "time"

// Workspace groups members, boards, tasks and reports.
type Workspace struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:128;not null"`
	Description string `gorm:"size:255"`
	OwnerID     uint   `gorm:"index;not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
