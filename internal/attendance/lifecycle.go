package attendance

import (
	"encoding/json"
	"errors"
	"time"

	"teamtrack/internal/models"

	"gorm.io/gorm"
)

var (
	ErrShiftAlreadyOpen = errors.New("an in-progress shift already exists")
	ErrNoOpenShift      = errors.New("no in-progress shift to clock out of")
)

// EncodeDailyTasks stores the ordered task list as JSON text.
func EncodeDailyTasks(tasks []string) string {
	if len(tasks) == 0 {
		return ""
	}
	b, err := json.Marshal(tasks)
	if err != nil {
		return ""
	}
	return string(b)
}

// DecodeDailyTasks is the inverse of EncodeDailyTasks.
func DecodeDailyTasks(raw string) []string {
	if raw == "" {
		return nil
	}
	var tasks []string
	if err := json.Unmarshal([]byte(raw), &tasks); err != nil {
		return nil
	}
	return tasks
}

// ClockIn opens a shift for the user. At most one shift may be IN_PROGRESS
// per user at a time.
func ClockIn(db *gorm.DB, userID uint, workspaceID *uint, now time.Time) (*models.AttendanceShift, error) {
	var count int64
	if err := db.Model(&models.AttendanceShift{}).
		Where("user_id = ? AND status = ?", userID, models.ShiftInProgress).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrShiftAlreadyOpen
	}

	shift := &models.AttendanceShift{
		UserID:         userID,
		WorkspaceID:    workspaceID,
		ShiftStartTime: now,
		Status:         models.ShiftInProgress,
	}
	if err := db.Create(shift).Error; err != nil {
		return nil, err
	}
	return shift, nil
}

// ClockOut closes the user's open shift. The transition is a single
// conditional update on status, so a concurrent sweep or double submit can
// never complete the same shift twice.
func ClockOut(db *gorm.DB, userID uint, now time.Time, dailyTasks []string, endActivity string) (*models.AttendanceShift, error) {
	var shift models.AttendanceShift
	err := db.Where("user_id = ? AND status = ?", userID, models.ShiftInProgress).
		Order("shift_start_time DESC").First(&shift).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoOpenShift
	}
	if err != nil {
		return nil, err
	}

	duration := int(now.Sub(shift.ShiftStartTime).Minutes())
	if duration < 0 {
		duration = 0
	}
	tasks := EncodeDailyTasks(dailyTasks)

	res := db.Model(&models.AttendanceShift{}).
		Where("id = ? AND status = ?", shift.ID, models.ShiftInProgress).
		Updates(map[string]interface{}{
			"shift_end_time": now,
			"total_duration": duration,
			"daily_tasks":    tasks,
			"end_activity":   endActivity,
			"status":         models.ShiftCompleted,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNoOpenShift
	}

	shift.ShiftEndTime = &now
	shift.TotalDuration = duration
	shift.DailyTasks = tasks
	shift.EndActivity = endActivity
	shift.Status = models.ShiftCompleted
	return &shift, nil
}
