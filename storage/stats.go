package storage

import (
	"fmt"
	"time"

	"venue-guide-system/models"
	"venue-guide-system/services"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"
)

// The Record* methods mirror event-source rows with insert-if-absent
// semantics. A lost insert (duplicate delivery) surfaces as
// services.ErrConflict so the event path can drop it.

func (s *Store) RecordReview(r models.Review) error {
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&r)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: review %s already recorded", services.ErrConflict, r.ID)
	}
	return nil
}

// MarkReviewPhoto is idempotent: re-marking an already-marked review
// changes nothing.
func (s *Store) MarkReviewPhoto(reviewID, userID string) error {
	res := s.db.Model(&models.Review{}).
		Where("id = ? AND user_id = ?", reviewID, userID).
		Update("has_photo", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := s.db.Model(&models.Review{}).
			Where("id = ? AND user_id = ?", reviewID, userID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: review %s for user %s", services.ErrNotFound, reviewID, userID)
		}
	}
	return nil
}

func (s *Store) RecordFollow(f models.Follow) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "follower_id"}, {Name: "followed_id"}},
		DoNothing: true,
	}).Create(&f)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: follow %s → %s already recorded", services.ErrConflict, f.FollowerID, f.FollowedID)
	}
	return nil
}

func (s *Store) RecordVote(v models.ReviewVote) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	res := s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "voter_id"}, {Name: "review_id"}},
		DoNothing: true,
	}).Create(&v)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: vote %s on %s already recorded", services.ErrConflict, v.VoterID, v.ReviewID)
	}
	return nil
}

// Authoritative counts for the set-absolute primitive.

func (s *Store) ReviewCount(userID string) (int, error) {
	var n int64
	err := s.db.Model(&models.Review{}).Where("user_id = ?", userID).Count(&n).Error
	return int(n), err
}

func (s *Store) PhotoReviewCount(userID string) (int, error) {
	var n int64
	err := s.db.Model(&models.Review{}).
		Where("user_id = ? AND has_photo", userID).Count(&n).Error
	return int(n), err
}

func (s *Store) CheckInsOnDay(userID, dayKey string) (int, error) {
	var n int64
	err := s.db.Model(&models.CheckIn{}).
		Where("user_id = ? AND checkin_day = ? AND verified", userID, dayKey).
		Count(&n).Error
	return int(n), err
}

func (s *Store) VerifiedCheckInCount(userID string) (int, error) {
	var n int64
	err := s.db.Model(&models.CheckIn{}).
		Where("user_id = ? AND verified", userID).Count(&n).Error
	return int(n), err
}

func (s *Store) DistinctVenueCount(userID string) (int, error) {
	var n int64
	err := s.db.Model(&models.CheckIn{}).
		Where("user_id = ? AND verified", userID).
		Distinct("establishment_id").Count(&n).Error
	return int(n), err
}

func (s *Store) DistinctZoneCount(userID string, since time.Time) (int, error) {
	var n int64
	err := s.db.Model(&models.CheckIn{}).
		Where("user_id = ? AND verified AND created_at >= ?", userID, since).
		Distinct("zone").Count(&n).Error
	return int(n), err
}

func (s *Store) FollowerCount(userID string) (int, error) {
	var n int64
	err := s.db.Model(&models.Follow{}).Where("followed_id = ?", userID).Count(&n).Error
	return int(n), err
}

func (s *Store) HelpfulVotesReceived(userID string) (int, error) {
	var n int64
	err := s.db.Model(&models.ReviewVote{}).
		Where("author_id = ? AND helpful", userID).Count(&n).Error
	return int(n), err
}
