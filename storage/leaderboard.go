package storage

import (
	"venue-guide-system/models"
)

// Ranking queries. Every board orders score DESC with deterministic
// tie-breaks (earliest activity first, then user id) so repeated calls
// over identical data return identical rankings.

func (s *Store) TopByTotalXP(n int) ([]models.LeaderboardRow, error) {
	var rows []models.LeaderboardRow
	err := s.db.Raw(`
		SELECT up.user_id,
		       COALESCE(pu.username, up.user_id) AS username,
		       up.current_level AS level,
		       up.total_xp AS score
		FROM user_points up
		LEFT JOIN profile_users pu
		       ON pu.external_user_id = up.user_id AND pu.deleted_at IS NULL
		ORDER BY up.total_xp DESC, up.last_activity_date ASC NULLS LAST, up.user_id ASC
		LIMIT ?
	`, n).Scan(&rows).Error
	return rows, err
}

func (s *Store) TopByMonthlyXP(n int) ([]models.LeaderboardRow, error) {
	var rows []models.LeaderboardRow
	err := s.db.Raw(`
		SELECT up.user_id,
		       COALESCE(pu.username, up.user_id) AS username,
		       up.current_level AS level,
		       up.monthly_xp AS score
		FROM user_points up
		LEFT JOIN profile_users pu
		       ON pu.external_user_id = up.user_id AND pu.deleted_at IS NULL
		WHERE up.monthly_xp > 0
		ORDER BY up.monthly_xp DESC, up.last_activity_date ASC NULLS LAST, up.user_id ASC
		LIMIT ?
	`, n).Scan(&rows).Error
	return rows, err
}

// TopByZone ranks by verified check-ins inside the zone.
func (s *Store) TopByZone(zone string, n int) ([]models.LeaderboardRow, error) {
	var rows []models.LeaderboardRow
	err := s.db.Raw(`
		SELECT c.user_id,
		       COALESCE(pu.username, c.user_id) AS username,
		       COALESCE(up.current_level, 1) AS level,
		       COUNT(*) AS score
		FROM check_ins c
		LEFT JOIN user_points up ON up.user_id = c.user_id
		LEFT JOIN profile_users pu
		       ON pu.external_user_id = c.user_id AND pu.deleted_at IS NULL
		WHERE c.zone = ? AND c.verified
		GROUP BY c.user_id, pu.username, up.current_level, up.last_activity_date
		ORDER BY score DESC, up.last_activity_date ASC NULLS LAST, c.user_id ASC
		LIMIT ?
	`, zone, n).Scan(&rows).Error
	return rows, err
}

// TopByCategory ranks by reviews written for venues in the category.
func (s *Store) TopByCategory(category string, n int) ([]models.LeaderboardRow, error) {
	var rows []models.LeaderboardRow
	err := s.db.Raw(`
		SELECT r.user_id,
		       COALESCE(pu.username, r.user_id) AS username,
		       COALESCE(up.current_level, 1) AS level,
		       COUNT(*) AS score
		FROM reviews r
		INNER JOIN establishments e ON e.id = r.establishment_id
		LEFT JOIN user_points up ON up.user_id = r.user_id
		LEFT JOIN profile_users pu
		       ON pu.external_user_id = r.user_id AND pu.deleted_at IS NULL
		WHERE e.category = ?
		GROUP BY r.user_id, pu.username, up.current_level, up.last_activity_date
		ORDER BY score DESC, up.last_activity_date ASC NULLS LAST, r.user_id ASC
		LIMIT ?
	`, category, n).Scan(&rows).Error
	return rows, err
}
