package database

import (
	"fmt"

	"teamtrack/internal/models"

	"gorm.io/gorm"
)

// AutoMigrate runs database schema migrations for all models.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Session{},
		&models.Workspace{},
		&models.Membership{},
		&models.Board{},
		&models.Task{},
		&models.AttendanceShift{},
		&models.WeeklyReport{},
		&models.Bug{},
		&models.ActivityLog{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
