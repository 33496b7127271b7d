package models

import "time"

// WeeklyReport is one user's report for one workspace and week.
// week_start is the Monday of the reported week.
type WeeklyReport struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          uint      `gorm:"not null;uniqueIndex:idx_report_user_workspace_week"`
	WorkspaceID     uint      `gorm:"not null;uniqueIndex:idx_report_user_workspace_week"`
	WeekStart       time.Time `gorm:"not null;uniqueIndex:idx_report_user_workspace_week"`
	Accomplishments string    `gorm:"type:text"`
	Plans           string    `gorm:"type:text"`
	Blockers        string    `gorm:"type:text"`
	SubmittedAt     time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
