package models

import (
	"time"
)

// XPSource is the closed set of reasons an XP transaction may carry.
// Unknown sources are rejected at award time instead of being persisted.
type XPSource string

const (
	SourceCheckIn             XPSource = "check_in"
	SourceReviewCreated       XPSource = "review_created"
	SourceVoteCast            XPSource = "vote_cast"
	SourceFollow              XPSource = "follow"
	SourceHelpfulVoteReceived XPSource = "helpful_vote_received"
	SourcePhotoUploaded       XPSource = "photo_uploaded"
	SourceMissionReward       XPSource = "mission_reward"
	SourceBadgeReward         XPSource = "badge_reward"
	SourceAdminGrant          XPSource = "admin_grant"
)

var validSources = map[XPSource]bool{
	SourceCheckIn:             true,
	SourceReviewCreated:       true,
	SourceVoteCast:            true,
	SourceFollow:              true,
	SourceHelpfulVoteReceived: true,
	SourcePhotoUploaded:       true,
	SourceMissionReward:       true,
	SourceBadgeReward:         true,
	SourceAdminGrant:          true,
}

func (s XPSource) Valid() bool { return validSources[s] }

// XPTransaction is the append-only audit ledger. Rows are never updated
// or deleted; the per-user sum must reconcile with user_points.total_xp.
type XPTransaction struct {
	ID                string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID            string    `gorm:"index;not null" json:"user_id"`
	Amount            int64     `gorm:"not null" json:"amount"`
	Source            XPSource  `gorm:"type:varchar(32);not null" json:"source"`
	RelatedEntityType string    `gorm:"type:varchar(32)" json:"related_entity_type,omitempty"`
	RelatedEntityID   string    `gorm:"type:varchar(64)" json:"related_entity_id,omitempty"`
	Description       string    `gorm:"type:text" json:"description,omitempty"`
	CreatedAt         time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
