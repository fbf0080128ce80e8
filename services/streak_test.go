package services

import (
	"testing"
	"time"

	"venue-guide-system/models"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, Location)
}

func TestAdvanceStreakFirstActivity(t *testing.T) {
	p := &models.UserPoints{UserID: "u1", CurrentLevel: 1}
	AdvanceStreak(p, day(2026, 8, 25))
	if p.CurrentStreakDays != 1 || p.LongestStreakDays != 1 {
		t.Errorf("streak = %d/%d, want 1/1", p.CurrentStreakDays, p.LongestStreakDays)
	}
}

func TestAdvanceStreakSameDayNoOp(t *testing.T) {
	p := &models.UserPoints{UserID: "u1", CurrentLevel: 1}
	AdvanceStreak(p, day(2026, 8, 25))
	AdvanceStreak(p, time.Date(2026, 8, 25, 23, 0, 0, 0, Location))
	if p.CurrentStreakDays != 1 {
		t.Errorf("streak = %d, want 1 after same-day repeat", p.CurrentStreakDays)
	}
}

func TestAdvanceStreakConsecutiveDays(t *testing.T) {
	p := &models.UserPoints{UserID: "u1", CurrentLevel: 1}
	AdvanceStreak(p, day(2026, 8, 25))
	AdvanceStreak(p, day(2026, 8, 26))
	AdvanceStreak(p, day(2026, 8, 27))
	if p.CurrentStreakDays != 3 || p.LongestStreakDays != 3 {
		t.Errorf("streak = %d/%d, want 3/3", p.CurrentStreakDays, p.LongestStreakDays)
	}
}

func TestAdvanceStreakGapResets(t *testing.T) {
	p := &models.UserPoints{UserID: "u1", CurrentLevel: 1}
	AdvanceStreak(p, day(2026, 8, 20))
	AdvanceStreak(p, day(2026, 8, 21))
	AdvanceStreak(p, day(2026, 8, 25))
	if p.CurrentStreakDays != 1 {
		t.Errorf("streak = %d, want 1 after gap", p.CurrentStreakDays)
	}
	if p.LongestStreakDays != 2 {
		t.Errorf("longest = %d, want 2 preserved", p.LongestStreakDays)
	}
}

func TestAdvanceStreakClockStepBackwards(t *testing.T) {
	p := &models.UserPoints{UserID: "u1", CurrentLevel: 1}
	AdvanceStreak(p, day(2026, 8, 25))
	AdvanceStreak(p, day(2026, 8, 26))
	AdvanceStreak(p, day(2026, 8, 20))
	if p.CurrentStreakDays != 1 {
		t.Errorf("streak = %d, want 1 after backwards step", p.CurrentStreakDays)
	}
}

func TestRecordActivityCreatesRow(t *testing.T) {
	eng := newTestEngine()
	p, err := eng.streaks.RecordActivity("u1", day(2026, 8, 25))
	if err != nil {
		t.Fatalf("RecordActivity: %v", err)
	}
	if p.CurrentStreakDays != 1 {
		t.Errorf("streak = %d, want 1", p.CurrentStreakDays)
	}
	if p.LastActivityDate == nil || !p.LastActivityDate.Equal(DayStart(day(2026, 8, 25))) {
		t.Errorf("last activity = %v, want day start", p.LastActivityDate)
	}
}

func TestRecordActivityValidation(t *testing.T) {
	eng := newTestEngine()
	if _, err := eng.streaks.RecordActivity("", day(2026, 8, 25)); !isValidationErr(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
