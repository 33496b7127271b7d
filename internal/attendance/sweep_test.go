package attendance

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"teamtrack/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.AttendanceShift{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedShift(t *testing.T, db *gorm.DB, userID uint, start time.Time) *models.AttendanceShift {
	t.Helper()
	shift := &models.AttendanceShift{
		UserID:         userID,
		ShiftStartTime: start,
		Status:         models.ShiftInProgress,
	}
	if err := db.Create(shift).Error; err != nil {
		t.Fatalf("seed shift: %v", err)
	}
	return shift
}

func reload(t *testing.T, db *gorm.DB, id uint) models.AttendanceShift {
	t.Helper()
	var shift models.AttendanceShift
	if err := db.First(&shift, id).Error; err != nil {
		t.Fatalf("reload shift %d: %v", id, err)
	}
	return shift
}

func TestMidnightAfter(t *testing.T) {
	loc := time.UTC
	cases := []struct {
		in   time.Time
		want time.Time
	}{
		{time.Date(2026, 3, 9, 22, 0, 0, 0, loc), time.Date(2026, 3, 10, 0, 0, 0, 0, loc)},
		{time.Date(2026, 3, 9, 0, 0, 0, 1, loc), time.Date(2026, 3, 10, 0, 0, 0, 0, loc)},
		// started exactly at midnight: boundary is the NEXT midnight
		{time.Date(2026, 3, 9, 0, 0, 0, 0, loc), time.Date(2026, 3, 10, 0, 0, 0, 0, loc)},
		// month rollover
		{time.Date(2026, 1, 31, 23, 59, 0, 0, loc), time.Date(2026, 2, 1, 0, 0, 0, 0, loc)},
	}
	for _, tc := range cases {
		if got := MidnightAfter(tc.in, loc); !got.Equal(tc.want) {
			t.Errorf("MidnightAfter(%v) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestSweep_AutoCompletesPastMidnight(t *testing.T) {
	db := testDB(t)
	loc := time.UTC

	start := time.Date(2026, 3, 9, 22, 0, 0, 0, loc)
	shift := seedShift(t, db, 1, start)

	s := NewSweeper(db, loc)
	s.Now = func() time.Time { return time.Date(2026, 3, 10, 0, 0, 1, 0, loc) }

	summary, err := s.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.AutoEndedCount != 1 || len(summary.Failures) != 0 {
		t.Fatalf("summary = %+v, want 1 auto-ended, no failures", summary)
	}

	got := reload(t, db, shift.ID)
	if got.Status != models.ShiftAutoCompleted {
		t.Errorf("status = %s, want AUTO_COMPLETED", got.Status)
	}
	// end time is the midnight boundary, never the sweep time
	wantEnd := time.Date(2026, 3, 10, 0, 0, 0, 0, loc)
	if got.ShiftEndTime == nil || !got.ShiftEndTime.In(loc).Equal(wantEnd) {
		t.Errorf("end time = %v, want %v", got.ShiftEndTime, wantEnd)
	}
	if got.TotalDuration != 120 {
		t.Errorf("total duration = %d, want 120", got.TotalDuration)
	}
	if got.EndActivity != AutoCloseActivity {
		t.Errorf("end activity = %q, want %q", got.EndActivity, AutoCloseActivity)
	}
	if tasks := DecodeDailyTasks(got.DailyTasks); len(tasks) != 1 || tasks[0] != AutoClosePlaceholder {
		t.Errorf("daily tasks = %v, want placeholder", tasks)
	}
}

func TestSweep_LeavesSameDayShiftsOpen(t *testing.T) {
	db := testDB(t)
	loc := time.UTC

	shift := seedShift(t, db, 1, time.Date(2026, 3, 9, 9, 0, 0, 0, loc))

	s := NewSweeper(db, loc)
	s.Now = func() time.Time { return time.Date(2026, 3, 9, 23, 59, 59, 0, loc) }

	summary, err := s.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.AutoEndedCount != 0 {
		t.Fatalf("summary = %+v, want nothing auto-ended", summary)
	}
	if got := reload(t, db, shift.ID); got.Status != models.ShiftInProgress {
		t.Errorf("status = %s, want IN_PROGRESS", got.Status)
	}
}

func TestSweep_Idempotent(t *testing.T) {
	db := testDB(t)
	loc := time.UTC

	shift := seedShift(t, db, 1, time.Date(2026, 3, 9, 22, 0, 0, 0, loc))

	s := NewSweeper(db, loc)
	s.Now = func() time.Time { return time.Date(2026, 3, 10, 8, 0, 0, 0, loc) }

	if _, err := s.Run(); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := reload(t, db, shift.ID)

	summary, err := s.Run()
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if summary.AutoEndedCount != 0 || len(summary.Failures) != 0 {
		t.Errorf("second run summary = %+v, want no-op", summary)
	}
	second := reload(t, db, shift.ID)
	if !second.ShiftEndTime.Equal(*first.ShiftEndTime) || second.TotalDuration != first.TotalDuration {
		t.Error("second run modified an already closed shift")
	}
}

func TestSweep_SkipsCompletedShifts(t *testing.T) {
	db := testDB(t)
	loc := time.UTC

	start := time.Date(2026, 3, 9, 9, 0, 0, 0, loc)
	end := time.Date(2026, 3, 9, 17, 30, 0, 0, loc)
	shift := &models.AttendanceShift{
		UserID:         1,
		ShiftStartTime: start,
		ShiftEndTime:   &end,
		TotalDuration:  510,
		EndActivity:    "wrapped up",
		Status:         models.ShiftCompleted,
	}
	if err := db.Create(shift).Error; err != nil {
		t.Fatalf("seed shift: %v", err)
	}

	s := NewSweeper(db, loc)
	s.Now = func() time.Time { return time.Date(2026, 3, 11, 0, 0, 0, 0, loc) }

	summary, err := s.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if summary.AutoEndedCount != 0 {
		t.Fatalf("summary = %+v, want nothing auto-ended", summary)
	}
	if got := reload(t, db, shift.ID); got.Status != models.ShiftCompleted || got.EndActivity != "wrapped up" {
		t.Errorf("completed shift was touched: %+v", got)
	}
}

func TestSweep_KeepsRecordedTasks(t *testing.T) {
	db := testDB(t)
	loc := time.UTC

	shift := seedShift(t, db, 1, time.Date(2026, 3, 9, 22, 0, 0, 0, loc))
	tasks := EncodeDailyTasks([]string{"deploy", "review"})
	if err := db.Model(shift).Update("daily_tasks", tasks).Error; err != nil {
		t.Fatalf("set daily tasks: %v", err)
	}

	s := NewSweeper(db, loc)
	s.Now = func() time.Time { return time.Date(2026, 3, 10, 1, 0, 0, 0, loc) }

	if _, err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	got := reload(t, db, shift.ID)
	if decoded := DecodeDailyTasks(got.DailyTasks); len(decoded) != 2 || decoded[0] != "deploy" {
		t.Errorf("recorded tasks replaced by placeholder: %v", decoded)
	}
}

func TestSweep_PartialFailureIsolation(t *testing.T) {
	db := testDB(t)
	loc := time.UTC

	start := time.Date(2026, 3, 9, 20, 0, 0, 0, loc)
	s1 := seedShift(t, db, 1, start)
	s2 := seedShift(t, db, 2, start)
	s3 := seedShift(t, db, 3, start)

	// fail exactly the second shift's auto-close update
	err := db.Callback().Update().Before("gorm:update").Register("fail_shift_two", func(tx *gorm.DB) {
		if updateTargets(tx, s2.ID) {
			tx.AddError(errors.New("simulated storage failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}
	defer db.Callback().Update().Remove("fail_shift_two")

	s := NewSweeper(db, loc)
	s.Now = func() time.Time { return time.Date(2026, 3, 10, 0, 30, 0, 0, loc) }

	summary, sweepErr := s.Run()
	if sweepErr != nil {
		t.Fatalf("Run: %v", sweepErr)
	}
	if summary.AutoEndedCount != 2 {
		t.Errorf("auto-ended = %d, want 2", summary.AutoEndedCount)
	}
	if len(summary.Failures) != 1 || summary.Failures[0] != s2.ID {
		t.Errorf("failures = %v, want [%d]", summary.Failures, s2.ID)
	}

	if got := reload(t, db, s1.ID); got.Status != models.ShiftAutoCompleted {
		t.Errorf("shift 1 status = %s, want AUTO_COMPLETED", got.Status)
	}
	if got := reload(t, db, s2.ID); got.Status != models.ShiftInProgress {
		t.Errorf("failed shift status = %s, want IN_PROGRESS", got.Status)
	}
	if got := reload(t, db, s3.ID); got.Status != models.ShiftAutoCompleted {
		t.Errorf("shift 3 status = %s, want AUTO_COMPLETED", got.Status)
	}
}

// updateTargets reports whether the statement's WHERE conditions mention the
// given shift id.
func updateTargets(tx *gorm.DB, id uint) bool {
	c, ok := tx.Statement.Clauses["WHERE"]
	if !ok {
		return false
	}
	where, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, expr := range where.Exprs {
		e, ok := expr.(clause.Expr)
		if !ok {
			continue
		}
		for _, v := range e.Vars {
			if n, ok := v.(uint); ok && n == id {
				return true
			}
		}
	}
	return false
}
