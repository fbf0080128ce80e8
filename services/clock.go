package services

import (
	"log"
	"math"
	"time"
)

// The engine computes every calendar boundary (streak days, daily and
// weekly mission periods, monthly resets) in one fixed reference
// timezone, independent of the server locale, so scheduled resets and
// user-facing progress agree regardless of deployment region.
const referenceTimezone = "America/Santiago"

// Location is the fixed reference timezone for all calendar math.
var Location *time.Location

func init() {
	loc, err := time.LoadLocation(referenceTimezone)
	if err != nil {
		log.Printf("⚠️ failed to load reference timezone %s, falling back to UTC: %v", referenceTimezone, err)
		loc = time.UTC
	}
	Location = loc
}

// DayStart returns midnight of t's calendar day in the reference timezone.
func DayStart(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
}

// WeekStart returns Monday 00:00 of t's week in the reference timezone.
func WeekStart(t time.Time) time.Time {
	d := DayStart(t)
	offset := (int(d.Weekday()) + 6) % 7 // Monday = 0
	return d.AddDate(0, 0, -offset)
}

// MonthStart returns the 1st 00:00 of t's month in the reference timezone.
func MonthStart(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, Location)
}

// DaysBetween counts calendar days from a to b in the reference
// timezone. Rounding absorbs the 23h/25h days around DST transitions.
func DaysBetween(a, b time.Time) int {
	return int(math.Round(DayStart(b).Sub(DayStart(a)).Hours() / 24))
}

// DayKey and WeekKey format mission period keys. The empty key is
// reserved for non-periodic missions.
func DayKey(t time.Time) string  { return DayStart(t).Format("2006-01-02") }
func WeekKey(t time.Time) string { return WeekStart(t).Format("2006-01-02") }
