package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	BugStatusOpen       = "OPEN"
	BugStatusInProgress = "IN_PROGRESS"
	BugStatusResolved   = "RESOLVED"
	BugStatusClosed     = "CLOSED"
)

const (
	BugSeverityLow      = "LOW"
	BugSeverityMedium   = "MEDIUM"
	BugSeverityHigh     = "HIGH"
	BugSeverityCritical = "CRITICAL"
)

// Bug is a tracked defect inside a workspace, optionally linked to a task.
type Bug struct {
	ID          uint   `gorm:"primaryKey"`
	WorkspaceID uint   `gorm:"index;not null"`
	TaskID      *uint  `gorm:"index"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	Severity    string `gorm:"size:10;not null;default:MEDIUM"`
	Status      string `gorm:"size:20;index;not null;default:OPEN"`
	ReporterID  uint   `gorm:"index;not null"`
	AssigneeID  *uint  `gorm:"index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt `gorm:"index"`
}
