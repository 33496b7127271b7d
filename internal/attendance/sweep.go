package attendance

import (
	"time"

	"teamtrack/internal/models"

	"gorm.io/gorm"
)

// Text written into shifts the sweep force-closes.
const (
	AutoCloseActivity    = "Shift auto-completed at midnight by the system"
	AutoClosePlaceholder = "No tasks recorded"
)

// SweepSummary is the partial-success report of one sweep run.
type SweepSummary struct {
	AutoEndedCount int    `json:"auto_ended_count"`
	Failures       []uint `json:"failures"`
}

// Sweeper force-closes shifts left open past midnight. It is stateless
// between runs; an external trigger (ticker or admin endpoint) invokes Run.
type Sweeper struct {
	DB  *gorm.DB
	Loc *time.Location

	// Now is a test hook; nil means time.Now.
	Now func() time.Time
}

func NewSweeper(db *gorm.DB, loc *time.Location) *Sweeper {
	if loc == nil {
		loc = time.Local
	}
	return &Sweeper{DB: db, Loc: loc}
}

func (s *Sweeper) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// MidnightAfter returns the next midnight in loc strictly after t. A shift
// started exactly at midnight closes at the following midnight.
func MidnightAfter(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc).AddDate(0, 0, 1)
}

// Run auto-completes every IN_PROGRESS shift whose midnight boundary has
// passed. Shifts are processed independently: one bad row never aborts the
// batch, it just lands in the summary's failure list. Closed shifts use the
// midnight boundary as end time, never the (possibly late) sweep time.
func (s *Sweeper) Run() (SweepSummary, error) {
	summary := SweepSummary{Failures: []uint{}}

	var shifts []models.AttendanceShift
	if err := s.DB.Where("status = ?", models.ShiftInProgress).Find(&shifts).Error; err != nil {
		return summary, err
	}

	now := s.now()
	for _, shift := range shifts {
		boundary := MidnightAfter(shift.ShiftStartTime, s.Loc)
		if now.Before(boundary) {
			continue
		}

		closed, err := s.autoClose(&shift, boundary)
		if err != nil {
			summary.Failures = append(summary.Failures, shift.ID)
			continue
		}
		if closed {
			summary.AutoEndedCount++
		}
	}
	return summary, nil
}

// autoClose performs the single conditional update. RowsAffected == 0 means a
// concurrent sweep or clock-out got there first; that is not a failure.
func (s *Sweeper) autoClose(shift *models.AttendanceShift, boundary time.Time) (bool, error) {
	tasks := shift.DailyTasks
	if tasks == "" || tasks == "[]" {
		tasks = EncodeDailyTasks([]string{AutoClosePlaceholder})
	}
	duration := int(boundary.Sub(shift.ShiftStartTime).Minutes())

	res := s.DB.Model(&models.AttendanceShift{}).
		Where("id = ? AND status = ?", shift.ID, models.ShiftInProgress).
		Updates(map[string]interface{}{
			"shift_end_time": boundary,
			"total_duration": duration,
			"daily_tasks":    tasks,
			"end_activity":   AutoCloseActivity,
			"status":         models.ShiftAutoCompleted,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
