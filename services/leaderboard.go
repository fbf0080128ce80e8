package services

import (
	"venue-guide-system/models"

	"github.com/gosimple/slug"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RankingStore answers ranked queries over the materialized points and
// the derived per-zone/per-category counters. Implementations must
// order deterministically: score DESC, earliest activity first, then
// user id.
type RankingStore interface {
	TopByTotalXP(n int) ([]models.LeaderboardRow, error)
	TopByMonthlyXP(n int) ([]models.LeaderboardRow, error)
	TopByZone(zone string, n int) ([]models.LeaderboardRow, error)
	TopByCategory(category string, n int) ([]models.LeaderboardRow, error)
}

// LeaderboardService is a pure read layer; it mutates nothing.
type LeaderboardService struct {
	Rankings RankingStore
}

func NewLeaderboardService(rankings RankingStore) *LeaderboardService {
	return &LeaderboardService{Rankings: rankings}
}

type Leaderboard struct {
	Board   string                  `json:"board"`
	Label   string                  `json:"label,omitempty"`
	Entries []models.LeaderboardRow `json:"entries"`
}

var titleCaser = cases.Title(language.Und)

func (s *LeaderboardService) GlobalTop(n int) (Leaderboard, error) {
	rows, err := s.Rankings.TopByTotalXP(clampTop(n))
	if err != nil {
		return Leaderboard{}, err
	}
	return Leaderboard{Board: "global", Entries: ranked(rows)}, nil
}

func (s *LeaderboardService) MonthlyTop(n int) (Leaderboard, error) {
	rows, err := s.Rankings.TopByMonthlyXP(clampTop(n))
	if err != nil {
		return Leaderboard{}, err
	}
	return Leaderboard{Board: "monthly", Entries: ranked(rows)}, nil
}

// ZoneTop accepts free-form zone names and normalizes them to the slug
// keys check-ins were stored under.
func (s *LeaderboardService) ZoneTop(zone string, n int) (Leaderboard, error) {
	key := slug.Make(zone)
	if key == "" {
		return Leaderboard{}, validationf("zone is required")
	}
	rows, err := s.Rankings.TopByZone(key, clampTop(n))
	if err != nil {
		return Leaderboard{}, err
	}
	return Leaderboard{Board: "zone", Label: displayLabel(key), Entries: ranked(rows)}, nil
}

func (s *LeaderboardService) CategoryTop(category string, n int) (Leaderboard, error) {
	key := slug.Make(category)
	if key == "" {
		return Leaderboard{}, validationf("category is required")
	}
	rows, err := s.Rankings.TopByCategory(key, clampTop(n))
	if err != nil {
		return Leaderboard{}, err
	}
	return Leaderboard{Board: "category", Label: displayLabel(key), Entries: ranked(rows)}, nil
}

// ranked stamps 1-based positions; the store already ordered the rows.
func ranked(rows []models.LeaderboardRow) []models.LeaderboardRow {
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func clampTop(n int) int {
	if n < 1 || n > 100 {
		return 10
	}
	return n
}

func displayLabel(key string) string {
	out := make([]rune, 0, len(key))
	for _, r := range key {
		if r == '-' {
			out = append(out, ' ')
		} else {
			out = append(out, r)
		}
	}
	return titleCaser.String(string(out))
}
