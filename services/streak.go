package services

import (
	"time"

	"venue-guide-system/models"
)

// StreakService maintains consecutive-activity-day counters on the
// points row. Calendar days come from the fixed reference timezone so
// the same event never lands on different days across deployments.
type StreakService struct {
	Points PointsStore
}

func NewStreakService(points PointsStore) *StreakService {
	return &StreakService{Points: points}
}

// RecordActivity advances the streak for activity at the given instant.
// Same calendar day: no change. Exactly the next day: increment. A gap
// of more than one day: reset to 1. Runs under the points row lock so
// two racing events cannot both extend the streak.
func (s *StreakService) RecordActivity(userID string, at time.Time) (models.UserPoints, error) {
	if userID == "" {
		return models.UserPoints{}, validationf("user id is required")
	}
	return s.Points.MutatePoints(userID, func(p *models.UserPoints) error {
		AdvanceStreak(p, at)
		return nil
	})
}

// AdvanceStreak applies the streak rules to the points row in place.
// Pure apart from the fixed reference timezone; callers own locking.
func AdvanceStreak(p *models.UserPoints, at time.Time) {
	day := DayStart(at)

	if p.LastActivityDate == nil {
		p.CurrentStreakDays = 1
	} else {
		switch gap := DaysBetween(*p.LastActivityDate, day); {
		case gap == 0:
			return // already counted today
		case gap == 1:
			p.CurrentStreakDays++
		default:
			// Also covers negative gaps from a clock step backwards.
			p.CurrentStreakDays = 1
		}
	}
	if p.CurrentStreakDays > p.LongestStreakDays {
		p.LongestStreakDays = p.CurrentStreakDays
	}
	p.LastActivityDate = &day
}
