package storage

import (
	"time"

	"venue-guide-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Increment adds delta to the progress counter as one atomic upsert
// against the (user_id, mission_id, period_key) unique key. Two
// concurrent triggers can never read the same base value; completed
// rows are left untouched.
func (s *Store) Increment(userID, missionID, periodKey string, periodStart *time.Time, delta, target int) (models.MissionProgress, error) {
	initial := delta
	if initial > target {
		initial = target
	}
	row := models.MissionProgress{
		ID:              uuid.NewString(),
		UserID:          userID,
		MissionID:       missionID,
		PeriodKey:       periodKey,
		PeriodStart:     periodStart,
		ProgressCounter: initial,
		Target:          target,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "mission_id"}, {Name: "period_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"progress_counter": gorm.Expr(
				"CASE WHEN mission_progresses.completed_at IS NULL THEN LEAST(mission_progresses.progress_counter + ?, mission_progresses.target) ELSE mission_progresses.progress_counter END",
				delta,
			),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return models.MissionProgress{}, err
	}
	return s.GetProgress(userID, missionID, periodKey)
}

// SetCounter writes a freshly recomputed authoritative value. The
// write is idempotent regardless of event ordering or duplication.
func (s *Store) SetCounter(userID, missionID, periodKey string, periodStart *time.Time, value, target int) (models.MissionProgress, error) {
	initial := value
	if initial > target {
		initial = target
	}
	row := models.MissionProgress{
		ID:              uuid.NewString(),
		UserID:          userID,
		MissionID:       missionID,
		PeriodKey:       periodKey,
		PeriodStart:     periodStart,
		ProgressCounter: initial,
		Target:          target,
	}
	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "mission_id"}, {Name: "period_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"progress_counter": gorm.Expr(
				"CASE WHEN mission_progresses.completed_at IS NULL THEN LEAST(?, mission_progresses.target) ELSE mission_progresses.progress_counter END",
				value,
			),
			"updated_at": time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return models.MissionProgress{}, err
	}
	return s.GetProgress(userID, missionID, periodKey)
}

// ClaimCompletion sets completed_at exactly once. The conditional
// UPDATE is the race arbiter: exactly one caller sees rows-affected=1
// and owns the reward path.
func (s *Store) ClaimCompletion(userID, missionID, periodKey string, at time.Time) (bool, error) {
	res := s.db.Model(&models.MissionProgress{}).
		Where("user_id = ? AND mission_id = ? AND period_key = ? AND completed_at IS NULL AND progress_counter >= target",
			userID, missionID, periodKey).
		Update("completed_at", at)
	return res.RowsAffected == 1, res.Error
}

// Ensure creates the progress row with a zero counter if absent
// (narrative step activation).
func (s *Store) Ensure(userID, missionID, periodKey string, periodStart *time.Time, target int) error {
	row := models.MissionProgress{
		ID:          uuid.NewString(),
		UserID:      userID,
		MissionID:   missionID,
		PeriodKey:   periodKey,
		PeriodStart: periodStart,
		Target:      target,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "mission_id"}, {Name: "period_key"}},
		DoNothing: true,
	}).Create(&row).Error
}

func (s *Store) GetProgress(userID, missionID, periodKey string) (models.MissionProgress, error) {
	var p models.MissionProgress
	err := s.db.Where("user_id = ? AND mission_id = ? AND period_key = ?", userID, missionID, periodKey).
		First(&p).Error
	if err != nil {
		return models.MissionProgress{}, wrapNotFound(err, "progress user=%s mission=%s period=%q", userID, missionID, periodKey)
	}
	return p, nil
}

func (s *Store) ListProgressForUser(userID string) ([]models.MissionProgress, error) {
	var rows []models.MissionProgress
	err := s.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&rows).Error
	return rows, err
}

// PruneBefore drops periodic progress rows older than the retention
// cutoff. Prior-period rows inside the window stay as history.
func (s *Store) PruneBefore(t models.MissionType, cutoff time.Time) (int64, error) {
	res := s.db.
		Where("mission_id IN (SELECT id FROM missions WHERE type = ?) AND period_start IS NOT NULL AND period_start < ?", t, cutoff).
		Delete(&models.MissionProgress{})
	return res.RowsAffected, res.Error
}
