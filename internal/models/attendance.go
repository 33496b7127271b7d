package models

import "time"

// Attendance shift states. NOT_STARTED is implicit (no row).
const (
	ShiftInProgress    = "IN_PROGRESS"
	ShiftCompleted     = "COMPLETED"
	ShiftAutoCompleted = "AUTO_COMPLETED"
)

// AttendanceShift is one clock-in/clock-out record. Rows are append-only
// history; they outlive workspace reassignment (workspace_id is nulled, not
// cascaded).
type AttendanceShift struct {
	ID             uint       `gorm:"primaryKey"`
	UserID         uint       `gorm:"index;not null"`
	WorkspaceID    *uint      `gorm:"index"`
	ShiftStartTime time.Time  `gorm:"index;not null"`
	ShiftEndTime   *time.Time
	TotalDuration  int    `gorm:"not null;default:0"` // minutes, floored
	DailyTasks     string `gorm:"type:text"`          // JSON-encoded ordered list of strings
	EndActivity    string `gorm:"size:255"`
	Status         string `gorm:"size:20;index;not null"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
