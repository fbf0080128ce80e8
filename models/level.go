package models

// XPPerLevel is the flat XP cost of each level.
const XPPerLevel = 100

// LevelForXP derives the level from a post-award XP total.
// Negative totals clamp to zero so a bad row can never yield level 0.
func LevelForXP(totalXP int64) int {
	if totalXP < 0 {
		totalXP = 0
	}
	return int(totalXP/XPPerLevel) + 1
}

// XPForNextLevel returns the total XP required to leave the given level.
func XPForNextLevel(level int) int64 {
	if level < 1 {
		level = 1
	}
	return int64(level) * XPPerLevel
}
