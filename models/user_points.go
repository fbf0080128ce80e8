package models

import (
	"time"
)

// UserPoints is the materialized progression row, one per user.
// Mutated only by the XP award path, the streak tracker and the
// monthly reset job — everything else reads it.
type UserPoints struct {
	UserID string `gorm:"primaryKey" json:"user_id"` // links to profile service

	TotalXP      int64 `json:"total_xp" gorm:"not null;default:0"`
	MonthlyXP    int64 `json:"monthly_xp" gorm:"not null;default:0"`
	CurrentLevel int   `json:"current_level" gorm:"not null;default:1"`

	CurrentStreakDays int        `json:"current_streak_days" gorm:"not null;default:0"`
	LongestStreakDays int        `json:"longest_streak_days" gorm:"not null;default:0"`
	LastActivityDate  *time.Time `json:"last_activity_date,omitempty"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
