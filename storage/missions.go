package storage

import (
	"venue-guide-system/models"
)

func (s *Store) ActiveByTrigger(trigger models.MissionTrigger) ([]models.Mission, error) {
	var rows []models.Mission
	err := s.db.Where("trigger = ? AND is_active", trigger).
		Order("code ASC").
		Find(&rows).Error
	return rows, err
}

func (s *Store) GetMission(id string) (models.Mission, error) {
	var m models.Mission
	if err := s.db.Where("id = ?", id).First(&m).Error; err != nil {
		return models.Mission{}, wrapNotFound(err, "mission %s", id)
	}
	return m, nil
}

// HasPredecessor reports whether the mission is some other mission's
// next step, i.e. a locked narrative continuation.
func (s *Store) HasPredecessor(missionID string) (bool, error) {
	var n int64
	err := s.db.Model(&models.Mission{}).
		Where("next_mission_id = ?", missionID).
		Count(&n).Error
	return n > 0, err
}

func (s *Store) ListActiveMissions() ([]models.Mission, error) {
	var rows []models.Mission
	err := s.db.Where("is_active").Order("code ASC").Find(&rows).Error
	return rows, err
}
