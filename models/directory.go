package models

import (
	"time"

	"gorm.io/gorm"
)

// Establishment is the slice of the directory the engine needs: venue
// coordinates for geofencing plus zone/category for derived rankings.
// Directory CRUD is owned by another service.
type Establishment struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Zone      string    `gorm:"type:varchar(64);index;not null" json:"zone"` // slug
	Category  string    `gorm:"type:varchar(64);index;not null" json:"category"`
	Latitude  float64   `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Review mirrors the review subsystem's rows so authoritative counts
// can be recomputed locally instead of trusting caller-supplied deltas.
type Review struct {
	ID              string    `gorm:"primaryKey;type:uuid" json:"id"` // id assigned by the review subsystem
	UserID          string    `gorm:"index;not null" json:"user_id"`
	EstablishmentID string    `gorm:"index;type:uuid;not null" json:"establishment_id"`
	Rating          int       `gorm:"not null" json:"rating"`
	HasPhoto        bool      `gorm:"not null;default:false" json:"has_photo"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// Follow is a unique follower/followed pair feeding mission triggers.
type Follow struct {
	ID         string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FollowerID string    `gorm:"uniqueIndex:uk_follow_pair;not null" json:"follower_id"`
	FollowedID string    `gorm:"uniqueIndex:uk_follow_pair;not null" json:"followed_id"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ReviewVote is a unique voter/review pair. Helpful votes also credit
// the review's author.
type ReviewVote struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	VoterID   string    `gorm:"uniqueIndex:uk_vote_pair;not null" json:"voter_id"`
	ReviewID  string    `gorm:"uniqueIndex:uk_vote_pair;type:uuid;not null" json:"review_id"`
	AuthorID  string    `gorm:"index;not null" json:"author_id"`
	Helpful   bool      `gorm:"not null;default:false" json:"helpful"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// ProfileUser is a local mirror of the profile service, kept fresh by
// the sync worker so leaderboards can render names without a remote
// call per request.
type ProfileUser struct {
	ID                string         `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ExternalUserID    string         `gorm:"uniqueIndex;not null" json:"external_user_id"`
	Username          string         `gorm:"index" json:"username"`
	DisplayName       *string        `json:"display_name,omitempty"`
	ProfilePictureURL *string        `json:"profile_picture_url,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}
