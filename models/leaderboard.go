package models

// LeaderboardRow is a scan target for ranking queries, not a table.
// Score is total XP, monthly XP, or a derived per-zone/per-category
// counter depending on the board.
type LeaderboardRow struct {
	Rank     int    `json:"rank" gorm:"-"`
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	Score    int64  `json:"score"`
}
