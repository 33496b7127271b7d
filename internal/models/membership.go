package models

import "time"

// Role is the closed set of membership roles. Comparisons between roles go
// through the rbac package; nothing outside this file mints new values.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleProjectManager Role = "PROJECT_MANAGER"
	RoleManagement     Role = "MANAGEMENT"
	RoleTeamLead       Role = "TEAM_LEAD"
	RoleEmployee       Role = "EMPLOYEE"
)

// Membership binds a user to a workspace with a role.
// At most one row per (user, workspace) pair.
type Membership struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"not null;uniqueIndex:idx_member_user_workspace"`
	WorkspaceID uint `gorm:"not null;uniqueIndex:idx_member_user_workspace"`
	Role        Role `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time

	User      User      `gorm:"constraint:OnDelete:CASCADE"`
	Workspace Workspace `gorm:"constraint:OnDelete:CASCADE"`
}
