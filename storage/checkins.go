package storage

import (
	"fmt"

	"venue-guide-system/models"
	"venue-guide-system/services"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// CreateCheckIn inserts the row or loses to the (user, venue, day)
// dedupe key. Losing the race is services.ErrConflict: the check-in
// was already counted today.
func (s *Store) CreateCheckIn(ci *models.CheckIn) error {
	if ci.ID == "" {
		ci.ID = uuid.NewString()
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "establishment_id"}, {Name: "checkin_day"}},
		DoNothing: true,
	}).Create(ci)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: already checked in at %s on %s", services.ErrConflict, ci.EstablishmentID, ci.CheckinDay)
	}
	return nil
}

func (s *Store) EstablishmentByID(id string) (models.Establishment, error) {
	var e models.Establishment
	if err := s.db.Where("id = ?", id).First(&e).Error; err != nil {
		return models.Establishment{}, wrapNotFound(err, "establishment %s", id)
	}
	return e, nil
}

func (s *Store) ListCheckInsForUser(userID string, limit int) ([]models.CheckIn, error) {
	var rows []models.CheckIn
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
