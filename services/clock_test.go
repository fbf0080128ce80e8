package services

import (
	"testing"
	"time"
)

func TestDayStart(t *testing.T) {
	at := time.Date(2026, 8, 27, 15, 30, 45, 0, Location)
	got := DayStart(at)
	want := time.Date(2026, 8, 27, 0, 0, 0, 0, Location)
	if !got.Equal(want) {
		t.Errorf("DayStart = %v, want %v", got, want)
	}
}

func TestWeekStartIsMonday(t *testing.T) {
	// 2026-08-27 is a Thursday; its week starts Monday the 24th.
	at := time.Date(2026, 8, 27, 15, 0, 0, 0, Location)
	got := WeekStart(at)
	want := time.Date(2026, 8, 24, 0, 0, 0, 0, Location)
	if !got.Equal(want) {
		t.Errorf("WeekStart = %v, want %v", got, want)
	}
	if got.Weekday() != time.Monday {
		t.Errorf("WeekStart weekday = %v, want Monday", got.Weekday())
	}

	// A Monday is its own week start.
	monday := time.Date(2026, 8, 24, 23, 59, 0, 0, Location)
	if got := WeekStart(monday); !got.Equal(want) {
		t.Errorf("WeekStart(monday) = %v, want %v", got, want)
	}
}

func TestMonthStart(t *testing.T) {
	at := time.Date(2026, 8, 27, 15, 0, 0, 0, Location)
	want := time.Date(2026, 8, 1, 0, 0, 0, 0, Location)
	if got := MonthStart(at); !got.Equal(want) {
		t.Errorf("MonthStart = %v, want %v", got, want)
	}
}

func TestDaysBetween(t *testing.T) {
	a := time.Date(2026, 8, 25, 23, 0, 0, 0, Location)
	b := time.Date(2026, 8, 27, 1, 0, 0, 0, Location)
	if got := DaysBetween(a, b); got != 2 {
		t.Errorf("DaysBetween = %d, want 2", got)
	}
	if got := DaysBetween(b, a); got != -2 {
		t.Errorf("DaysBetween reversed = %d, want -2", got)
	}
	if got := DaysBetween(a, a); got != 0 {
		t.Errorf("DaysBetween same = %d, want 0", got)
	}
}

func TestPeriodKeys(t *testing.T) {
	at := time.Date(2026, 8, 27, 15, 0, 0, 0, Location)
	if got := DayKey(at); got != "2026-08-27" {
		t.Errorf("DayKey = %q", got)
	}
	if got := WeekKey(at); got != "2026-08-24" {
		t.Errorf("WeekKey = %q", got)
	}
}
