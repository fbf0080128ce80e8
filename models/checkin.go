package models

import (
	"time"
)

// CheckIn is immutable once created. Verified is true iff the user was
// inside the venue's geofence at submission time; unverified check-ins
// stay on record but do not feed verified-only missions.
//
// The (user_id, establishment_id, checkin_day) unique index is the
// dedupe window: a second check-in at the same venue on the same
// reference-timezone day loses the insert race and is dropped.
type CheckIn struct {
	ID              string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID          string    `gorm:"uniqueIndex:uk_user_venue_day;not null" json:"user_id"`
	EstablishmentID string    `gorm:"uniqueIndex:uk_user_venue_day;type:uuid;not null" json:"establishment_id"`
	CheckinDay      string    `gorm:"uniqueIndex:uk_user_venue_day;type:varchar(10);not null" json:"checkin_day"` // YYYY-MM-DD, reference tz
	Zone            string    `gorm:"type:varchar(64);index;not null" json:"zone"`
	Latitude        float64   `gorm:"type:decimal(10,8);not null" json:"latitude"`
	Longitude       float64   `gorm:"type:decimal(11,8);not null" json:"longitude"`
	DistanceMeters  float64   `json:"distance_meters"`
	Verified        bool      `gorm:"not null;default:false;index" json:"verified"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
}
