package storage

import (
	"venue-guide-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

func (s *Store) ActiveBadges() ([]models.Badge, error) {
	var rows []models.Badge
	err := s.db.Where("is_active").Order("code ASC").Find(&rows).Error
	return rows, err
}

func (s *Store) GetBadge(id string) (models.Badge, error) {
	var b models.Badge
	if err := s.db.Where("id = ?", id).First(&b).Error; err != nil {
		return models.Badge{}, wrapNotFound(err, "badge %s", id)
	}
	return b, nil
}

// TryAward inserts the (user, badge) pair, letting the unique index
// arbitrate races: rows-affected tells whether this call won the award
// or the pair already existed.
func (s *Store) TryAward(userID, badgeID string) (bool, error) {
	row := models.UserBadge{
		ID:      uuid.NewString(),
		UserID:  userID,
		BadgeID: badgeID,
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "badge_id"}},
		DoNothing: true,
	}).Create(&row)
	return res.RowsAffected == 1, res.Error
}

func (s *Store) ListBadgesForUser(userID string) ([]models.UserBadge, error) {
	var rows []models.UserBadge
	err := s.db.Where("user_id = ?", userID).
		Order("awarded_at DESC").
		Find(&rows).Error
	return rows, err
}
