package models

import (
	"time"

	"gorm.io/gorm"
)

// Task statuses form a simple board flow; approval rules live in rbac.
const (
	TaskStatusTodo       = "TODO"
	TaskStatusInProgress = "IN_PROGRESS"
	TaskStatusInReview   = "IN_REVIEW"
	TaskStatusDone       = "DONE"
)

const (
	TaskPriorityLow    = "LOW"
	TaskPriorityMedium = "MEDIUM"
	TaskPriorityHigh   = "HIGH"
)

// Task is a single work item on a board.
type Task struct {
	ID          uint       `gorm:"primaryKey"`
	WorkspaceID uint       `gorm:"index;not null"`
	BoardID     *uint      `gorm:"index"`
	Title       string     `gorm:"size:255;not null"`
	Description string     `gorm:"type:text"`
	Status      string     `gorm:"size:20;index;not null;default:TODO"`
	Priority    string     `gorm:"size:10;not null;default:MEDIUM"`
	OwnerID     *uint      `gorm:"index"` // assignee; ownership rule for EMPLOYEE edits
	CreatorID   uint       `gorm:"index;not null"`
	DueDate     *time.Time `gorm:"index"`
	Position    int        `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
