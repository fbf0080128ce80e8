package services

import (
	"log"

	"venue-guide-system/models"
)

// BadgeStore persists badge awards. TryAward must lean on the
// (user_id, badge_id) unique pair: the insert either wins or reports
// an existing award, never an error.
type BadgeStore interface {
	ActiveBadges() ([]models.Badge, error)
	GetBadge(id string) (models.Badge, error)
	TryAward(userID, badgeID string) (bool, error)
	ListBadgesForUser(userID string) ([]models.UserBadge, error)
}

// badgeKindsByTrigger limits evaluation to requirement kinds the
// triggering action can have moved.
var badgeKindsByTrigger = map[models.MissionTrigger][]models.RequirementKind{
	models.TriggerCheckIn: {
		models.ReqVerifiedCheckIns, models.ReqDistinctVenues,
		models.ReqCurrentStreakDays, models.ReqCurrentLevel,
	},
	models.TriggerReviewCreated: {
		models.ReqReviewsTotal, models.ReqPhotoReviewsTotal,
		models.ReqCurrentStreakDays, models.ReqCurrentLevel,
	},
	models.TriggerVoteCast: {
		models.ReqCurrentLevel,
	},
	models.TriggerFollow: {
		models.ReqFollowersTotal, models.ReqCurrentLevel,
	},
	models.TriggerHelpfulVoteReceived: {
		models.ReqHelpfulVotesTotal,
	},
	models.TriggerPhotoUploaded: {
		models.ReqPhotoReviewsTotal,
	},
}

type BadgeService struct {
	Badges BadgeStore
	Stats  StatsStore
	Points PointsStore
	XP     *XPService
}

func NewBadgeService(badges BadgeStore, stats StatsStore, points PointsStore, xp *XPService) *BadgeService {
	return &BadgeService{Badges: badges, Stats: stats, Points: points, XP: xp}
}

// Evaluate checks every active badge relevant to the trigger and
// awards the ones now satisfied, returning the newly awarded ids.
// Re-firing the trigger after an award is a no-op per badge.
func (s *BadgeService) Evaluate(userID string, trigger models.MissionTrigger) ([]string, error) {
	if userID == "" {
		return nil, validationf("user id is required")
	}
	kinds := badgeKindsByTrigger[trigger]
	if len(kinds) == 0 {
		return nil, nil
	}
	relevant := map[models.RequirementKind]bool{}
	for _, k := range kinds {
		relevant[k] = true
	}

	badges, err := s.Badges.ActiveBadges()
	if err != nil {
		return nil, err
	}

	var awarded []string
	for _, b := range badges {
		if !relevant[b.Requirement] {
			continue
		}
		value, err := s.badgeValue(userID, b.Requirement)
		if err != nil {
			log.Printf("⚠️ badge counter failed: user=%s badge=%s: %v", userID, b.Code, err)
			continue
		}
		if value < b.Threshold {
			continue
		}
		won, err := s.award(userID, b)
		if err != nil {
			log.Printf("⚠️ badge award failed: user=%s badge=%s: %v", userID, b.Code, err)
			continue
		}
		if won {
			awarded = append(awarded, b.ID)
		}
	}
	return awarded, nil
}

// AwardByID grants a specific badge directly (mission rewards), with
// the same at-most-once guarantee. Returns whether this call awarded it.
func (s *BadgeService) AwardByID(userID, badgeID string) (bool, error) {
	if userID == "" || badgeID == "" {
		return false, validationf("user id and badge id are required")
	}
	b, err := s.Badges.GetBadge(badgeID)
	if err != nil {
		return false, err
	}
	return s.award(userID, b)
}

// ListForUser returns the user's awarded badges.
func (s *BadgeService) ListForUser(userID string) ([]models.UserBadge, error) {
	return s.Badges.ListBadgesForUser(userID)
}

func (s *BadgeService) award(userID string, b models.Badge) (bool, error) {
	won, err := s.Badges.TryAward(userID, b.ID)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil // already awarded — success, not an error
	}
	log.Printf("🎖️ Badge awarded: user=%s badge=%s (%s)", userID, b.Code, b.Rarity)
	if b.RewardXP > 0 {
		if _, err := s.XP.Award(userID, b.RewardXP, models.SourceBadgeReward, "badge", b.ID, b.Name); err != nil {
			log.Printf("⚠️ badge reward XP failed: user=%s badge=%s: %v", userID, b.Code, err)
		}
	}
	s.XP.dispatch(userID, NotifyBadgeAwarded, map[string]string{
		"badge":  b.Code,
		"name":   b.Name,
		"rarity": string(b.Rarity),
	})
	return true, nil
}

func (s *BadgeService) badgeValue(userID string, kind models.RequirementKind) (int, error) {
	switch kind {
	case models.ReqCurrentStreakDays, models.ReqCurrentLevel:
		p, err := s.Points.Points(userID)
		if err != nil {
			if isNotFound(err) {
				return 0, nil
			}
			return 0, err
		}
		if kind == models.ReqCurrentLevel {
			return p.CurrentLevel, nil
		}
		return p.CurrentStreakDays, nil
	case models.ReqVerifiedCheckIns:
		return s.Stats.VerifiedCheckInCount(userID)
	case models.ReqDistinctVenues:
		return s.Stats.DistinctVenueCount(userID)
	case models.ReqReviewsTotal:
		return s.Stats.ReviewCount(userID)
	case models.ReqPhotoReviewsTotal:
		return s.Stats.PhotoReviewCount(userID)
	case models.ReqFollowersTotal:
		return s.Stats.FollowerCount(userID)
	case models.ReqHelpfulVotesTotal:
		return s.Stats.HelpfulVotesReceived(userID)
	default:
		return 0, validationf("requirement kind %q has no badge counter", kind)
	}
}
