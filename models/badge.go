package models

import (
	"time"
)

type BadgeRarity string

const (
	RarityCommon    BadgeRarity = "common"
	RarityRare      BadgeRarity = "rare"
	RarityEpic      BadgeRarity = "epic"
	RarityLegendary BadgeRarity = "legendary"
)

type BadgeCategory string

const (
	BadgeCategoryExplorer  BadgeCategory = "explorer"
	BadgeCategoryReviewer  BadgeCategory = "reviewer"
	BadgeCategoryCommunity BadgeCategory = "community"
	BadgeCategoryMilestone BadgeCategory = "milestone"
)

// Badge is the static catalog row; the requirement is a single counter
// threshold checked against the user's aggregates.
type Badge struct {
	ID          string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code        string          `gorm:"uniqueIndex;not null" json:"code"` // e.g. "FIRST_CHECKIN"
	Name        string          `gorm:"not null" json:"name"`
	Description string          `gorm:"type:text" json:"description"`
	Category    BadgeCategory   `gorm:"type:varchar(16);not null" json:"category"`
	Rarity      BadgeRarity     `gorm:"type:varchar(16);not null;default:'common'" json:"rarity"`
	Requirement RequirementKind `gorm:"type:varchar(32);not null" json:"requirement"`
	Threshold   int             `gorm:"not null" json:"threshold"`
	RewardXP    int64           `gorm:"not null;default:0" json:"reward_xp"`
	IsActive    bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// UserBadge is the awarded instance. The (user_id, badge_id) unique
// pair is the concurrency guard: a duplicate insert means "already
// awarded", never an error.
type UserBadge struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID    string    `gorm:"uniqueIndex:uk_user_badge;not null" json:"user_id"`
	BadgeID   string    `gorm:"uniqueIndex:uk_user_badge;type:uuid;not null" json:"badge_id"`
	AwardedAt time.Time `gorm:"autoCreateTime" json:"awarded_at"`
}

// DefaultBadges is the seed catalog, upserted by code at startup.
var DefaultBadges = []Badge{
	{
		Code:        "FIRST_CHECKIN",
		Name:        "On the Map",
		Description: "Made your first verified check-in",
		Category:    BadgeCategoryExplorer,
		Rarity:      RarityCommon,
		Requirement: ReqVerifiedCheckIns,
		Threshold:   1,
		RewardXP:    10,
	},
	{
		Code:        "VENUES_10",
		Name:        "Regular",
		Description: "Checked in at 10 different venues",
		Category:    BadgeCategoryExplorer,
		Rarity:      RarityRare,
		Requirement: ReqDistinctVenues,
		Threshold:   10,
		RewardXP:    50,
	},
	{
		Code:        "REVIEWS_25",
		Name:        "Voice of the Street",
		Description: "Wrote 25 reviews",
		Category:    BadgeCategoryReviewer,
		Rarity:      RarityEpic,
		Requirement: ReqReviewsTotal,
		Threshold:   25,
		RewardXP:    200,
	},
	{
		Code:        "HELPFUL_50",
		Name:        "Trusted Guide",
		Description: "Received 50 helpful votes",
		Category:    BadgeCategoryCommunity,
		Rarity:      RarityEpic,
		Requirement: ReqHelpfulVotesTotal,
		Threshold:   50,
		RewardXP:    200,
	},
	{
		Code:        "FOLLOWERS_20",
		Name:        "Somebody",
		Description: "Reached 20 followers",
		Category:    BadgeCategoryCommunity,
		Rarity:      RarityRare,
		Requirement: ReqFollowersTotal,
		Threshold:   20,
		RewardXP:    100,
	},
	{
		Code:        "STREAK_7",
		Name:        "Seven Nights",
		Description: "Kept a 7-day activity streak",
		Category:    BadgeCategoryMilestone,
		Rarity:      RarityRare,
		Requirement: ReqCurrentStreakDays,
		Threshold:   7,
		RewardXP:    70,
	},
	{
		Code:        "LEVEL_10",
		Name:        "Double Digits",
		Description: "Reached level 10",
		Category:    BadgeCategoryMilestone,
		Rarity:      RarityRare,
		Requirement: ReqCurrentLevel,
		Threshold:   10,
		RewardXP:    100,
	},
	{
		// IsActive=false keeps this out of automatic evaluation; it is
		// granted only as the narrative chain's final reward.
		Code:        "CITY_STORYTELLER",
		Name:        "City Storyteller",
		Description: "Finished the First Steps story",
		Category:    BadgeCategoryMilestone,
		Rarity:      RarityEpic,
		Requirement: ReqDistinctVenues,
		Threshold:   5,
		RewardXP:    50,
		IsActive:    false,
	},
}

// DefaultMissionBadges links mission codes to the badge their
// completion grants. Resolved to ids at seed time.
var DefaultMissionBadges = map[string]string{
	"STORY_FIRST_STEPS_3": "CITY_STORYTELLER",
}
