package attendance

import (
	"errors"
	"testing"
	"time"

	"teamtrack/internal/models"
)

func TestClockInOut_Flow(t *testing.T) {
	db := testDB(t)
	loc := time.UTC
	start := time.Date(2026, 3, 9, 9, 0, 0, 0, loc)

	shift, err := ClockIn(db, 1, nil, start)
	if err != nil {
		t.Fatalf("ClockIn: %v", err)
	}
	if shift.Status != models.ShiftInProgress {
		t.Errorf("status after clock-in = %s, want IN_PROGRESS", shift.Status)
	}

	// only one open shift per user
	if _, err := ClockIn(db, 1, nil, start.Add(time.Hour)); !errors.Is(err, ErrShiftAlreadyOpen) {
		t.Errorf("second clock-in error = %v, want ErrShiftAlreadyOpen", err)
	}
	// another user is unaffected
	if _, err := ClockIn(db, 2, nil, start); err != nil {
		t.Errorf("clock-in for second user: %v", err)
	}

	end := start.Add(8*time.Hour + 30*time.Minute + 45*time.Second)
	closed, err := ClockOut(db, 1, end, []string{"standup", "release"}, "done for today")
	if err != nil {
		t.Fatalf("ClockOut: %v", err)
	}
	if closed.Status != models.ShiftCompleted {
		t.Errorf("status after clock-out = %s, want COMPLETED", closed.Status)
	}
	// minutes are floored, the stray seconds disappear
	if closed.TotalDuration != 510 {
		t.Errorf("total duration = %d, want 510", closed.TotalDuration)
	}
	if tasks := DecodeDailyTasks(closed.DailyTasks); len(tasks) != 2 || tasks[1] != "release" {
		t.Errorf("daily tasks = %v", tasks)
	}

	if _, err := ClockOut(db, 1, end.Add(time.Minute), nil, ""); !errors.Is(err, ErrNoOpenShift) {
		t.Errorf("double clock-out error = %v, want ErrNoOpenShift", err)
	}
}

func TestClockOut_WithoutShift(t *testing.T) {
	db := testDB(t)
	if _, err := ClockOut(db, 1, time.Now(), nil, ""); !errors.Is(err, ErrNoOpenShift) {
		t.Errorf("clock-out without shift error = %v, want ErrNoOpenShift", err)
	}
}

func TestDailyTasksRoundTrip(t *testing.T) {
	if EncodeDailyTasks(nil) != "" {
		t.Error("empty task list should encode to empty string")
	}
	if got := DecodeDailyTasks(""); got != nil {
		t.Errorf("DecodeDailyTasks(\"\") = %v, want nil", got)
	}
	if got := DecodeDailyTasks("not json"); got != nil {
		t.Errorf("DecodeDailyTasks on garbage = %v, want nil", got)
	}

	tasks := []string{"triage", "pairing", "docs"}
	decoded := DecodeDailyTasks(EncodeDailyTasks(tasks))
	if len(decoded) != 3 || decoded[0] != "triage" || decoded[2] != "docs" {
		t.Errorf("round trip = %v, want %v", decoded, tasks)
	}
}
