// Package storage implements the service-layer store contracts over
// GORM/Postgres. Contended rows use row-level atomic statements
// (ON CONFLICT upserts, conditional UPDATEs, SELECT ... FOR UPDATE) —
// never application-level read-modify-write.
package storage

import (
	"errors"
	"fmt"
	"log"

	"venue-guide-system/models"
	"venue-guide-system/services"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates/updates every table the engine owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserPoints{},
		&models.XPTransaction{},
		&models.Mission{},
		&models.MissionProgress{},
		&models.Badge{},
		&models.UserBadge{},
		&models.CheckIn{},
		&models.Establishment{},
		&models.Review{},
		&models.Follow{},
		&models.ReviewVote{},
		&models.ProfileUser{},
	)
}

// SeedCatalog upserts the default badge and mission catalogs by code
// and resolves narrative chaining and mission badge rewards. Safe to
// run on every boot.
func (s *Store) SeedCatalog() error {
	for _, b := range models.DefaultBadges {
		row := b
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed badge %s: %w", b.Code, err)
		}
		// GORM replaces zero values with column defaults on insert, so
		// manual-award badges need their flag forced off afterwards.
		if !b.IsActive {
			if err := s.db.Model(&models.Badge{}).Where("code = ?", b.Code).
				Update("is_active", false).Error; err != nil {
				return err
			}
		}
	}

	for _, m := range models.DefaultMissions {
		row := m
		if err := s.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "code"}},
			DoNothing: true,
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("seed mission %s: %w", m.Code, err)
		}
	}

	for fromCode, toCode := range models.DefaultMissionChain {
		var next models.Mission
		if err := s.db.Where("code = ?", toCode).First(&next).Error; err != nil {
			return fmt.Errorf("seed chain %s → %s: %w", fromCode, toCode, err)
		}
		if err := s.db.Model(&models.Mission{}).Where("code = ?", fromCode).
			Update("next_mission_id", next.ID).Error; err != nil {
			return err
		}
	}

	for missionCode, badgeCode := range models.DefaultMissionBadges {
		var b models.Badge
		if err := s.db.Where("code = ?", badgeCode).First(&b).Error; err != nil {
			return fmt.Errorf("seed mission badge %s → %s: %w", missionCode, badgeCode, err)
		}
		if err := s.db.Model(&models.Mission{}).Where("code = ?", missionCode).
			Update("reward_badge_id", b.ID).Error; err != nil {
			return err
		}
	}

	log.Printf("🌱 Catalog seeded: %d badges, %d missions", len(models.DefaultBadges), len(models.DefaultMissions))
	return nil
}

// wrapNotFound maps GORM's record-not-found onto the service taxonomy.
func wrapNotFound(err error, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: "+format, append([]interface{}{services.ErrNotFound}, args...)...)
	}
	return err
}
