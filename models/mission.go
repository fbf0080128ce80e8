package models

import (
	"time"
)

type MissionType string

const (
	MissionDaily     MissionType = "daily"
	MissionWeekly    MissionType = "weekly"
	MissionEvent     MissionType = "event"
	MissionNarrative MissionType = "narrative"
)

// MissionTrigger names the domain event kinds that can move a mission.
type MissionTrigger string

const (
	TriggerCheckIn             MissionTrigger = "check_in"
	TriggerReviewCreated       MissionTrigger = "review_created"
	TriggerVoteCast            MissionTrigger = "vote_cast"
	TriggerFollow              MissionTrigger = "follow"
	TriggerHelpfulVoteReceived MissionTrigger = "helpful_vote_received"
	TriggerPhotoUploaded       MissionTrigger = "photo_uploaded"
)

// RequirementKind selects both the counter a mission (or badge) tracks
// and how it is updated: kinds recomputed from authoritative counts use
// the set-absolute primitive, per-event kinds use atomic increments.
type RequirementKind string

const (
	ReqCheckInsToday      RequirementKind = "checkins_today"
	ReqDistinctVenues     RequirementKind = "distinct_venues"
	ReqDistinctZonesWeek  RequirementKind = "distinct_zones_week"
	ReqReviewsTotal       RequirementKind = "reviews_total"
	ReqPhotoReviewsTotal  RequirementKind = "photo_reviews_total"
	ReqFollowersTotal     RequirementKind = "followers_total"
	ReqHelpfulVotesTotal  RequirementKind = "helpful_votes_total"
	ReqVotesCastWeek      RequirementKind = "votes_cast_week"
	ReqFollowsMade        RequirementKind = "follows_made"
	ReqVerifiedCheckIns   RequirementKind = "verified_checkins_total"
	ReqCurrentStreakDays  RequirementKind = "current_streak_days"
	ReqCurrentLevel       RequirementKind = "current_level"
)

// Mission is a tracked objective with a counter target and a reward.
// Narrative steps chain through NextMissionID.
type Mission struct {
	ID            string          `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Code          string          `gorm:"uniqueIndex;not null" json:"code"` // e.g. "DAILY_CHECKINS_3"
	Name          string          `gorm:"not null" json:"name"`
	Description   string          `gorm:"type:text" json:"description"`
	Type          MissionType     `gorm:"type:varchar(16);not null" json:"type"`
	Trigger       MissionTrigger  `gorm:"type:varchar(32);not null;index" json:"trigger"`
	Requirement   RequirementKind `gorm:"type:varchar(32);not null" json:"requirement"`
	Target        int             `gorm:"not null" json:"target"`
	RewardXP      int64           `gorm:"not null;default:0" json:"reward_xp"`
	RewardBadgeID *string         `gorm:"type:uuid" json:"reward_badge_id,omitempty"`
	NextMissionID *string         `gorm:"type:uuid" json:"next_mission_id,omitempty"`
	IsActive      bool            `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// MissionProgress is keyed by (user_id, mission_id, period_key).
// PeriodKey is "" for non-periodic missions; the unique index is the
// idempotency guard for concurrent triggers. CompletedAt is set at most
// once, after which further increments are no-ops.
type MissionProgress struct {
	ID              string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID          string     `gorm:"uniqueIndex:uk_user_mission_period;not null" json:"user_id"`
	MissionID       string     `gorm:"uniqueIndex:uk_user_mission_period;type:uuid;not null" json:"mission_id"`
	PeriodKey       string     `gorm:"uniqueIndex:uk_user_mission_period;type:varchar(16);not null;default:''" json:"period_key"`
	PeriodStart     *time.Time `json:"period_start,omitempty"`
	ProgressCounter int        `gorm:"not null;default:0" json:"progress_counter"`
	Target          int        `gorm:"not null" json:"target"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Completed reports whether the completion marker has been claimed.
func (p *MissionProgress) Completed() bool { return p.CompletedAt != nil }

// DefaultMissions is the seed catalog, upserted by code at startup.
// Narrative chaining is resolved by code after the upsert.
var DefaultMissions = []Mission{
	{
		Code:        "DAILY_CHECKINS_3",
		Name:        "Night Crawler",
		Description: "Check in at 3 venues today",
		Type:        MissionDaily,
		Trigger:     TriggerCheckIn,
		Requirement: ReqCheckInsToday,
		Target:      3,
		RewardXP:    30,
	},
	{
		Code:        "WEEKLY_ZONES_3",
		Name:        "Zone Hopper",
		Description: "Visit 3 different zones this week",
		Type:        MissionWeekly,
		Trigger:     TriggerCheckIn,
		Requirement: ReqDistinctZonesWeek,
		Target:      3,
		RewardXP:    100,
	},
	{
		Code:        "WEEKLY_VOTES_5",
		Name:        "Critic's Critic",
		Description: "Vote on 5 reviews this week",
		Type:        MissionWeekly,
		Trigger:     TriggerVoteCast,
		Requirement: ReqVotesCastWeek,
		Target:      5,
		RewardXP:    50,
	},
	{
		Code:        "EVENT_REVIEWS_5",
		Name:        "Resident Reviewer",
		Description: "Write 5 reviews",
		Type:        MissionEvent,
		Trigger:     TriggerReviewCreated,
		Requirement: ReqReviewsTotal,
		Target:      5,
		RewardXP:    150,
	},
	{
		Code:        "STORY_FIRST_STEPS_1",
		Name:        "First Steps",
		Description: "Make your first verified check-in",
		Type:        MissionNarrative,
		Trigger:     TriggerCheckIn,
		Requirement: ReqVerifiedCheckIns,
		Target:      1,
		RewardXP:    20,
	},
	{
		Code:        "STORY_FIRST_STEPS_2",
		Name:        "Finding Your Voice",
		Description: "Write your first review",
		Type:        MissionNarrative,
		Trigger:     TriggerReviewCreated,
		Requirement: ReqReviewsTotal,
		Target:      1,
		RewardXP:    40,
	},
	{
		Code:        "STORY_FIRST_STEPS_3",
		Name:        "Local Legend",
		Description: "Check in at 5 different venues",
		Type:        MissionNarrative,
		Trigger:     TriggerCheckIn,
		Requirement: ReqDistinctVenues,
		Target:      5,
		RewardXP:    100,
	},
}

// DefaultMissionChain maps a narrative step code to its successor.
var DefaultMissionChain = map[string]string{
	"STORY_FIRST_STEPS_1": "STORY_FIRST_STEPS_2",
	"STORY_FIRST_STEPS_2": "STORY_FIRST_STEPS_3",
}
