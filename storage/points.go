package storage

import (
	"time"

	"venue-guide-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ApplyAward appends the ledger row and folds the amount into the
// materialized points row inside one transaction. The points row is
// locked FOR UPDATE so concurrent awards for the same user serialize
// instead of losing updates. The ledger insert happens first: if
// anything fails the transaction rolls back both writes together.
func (s *Store) ApplyAward(userID string, amount int64, row *models.XPTransaction) (before, after models.UserPoints, err error) {
	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(row).Error; err != nil {
			return err
		}

		seed := models.UserPoints{UserID: userID, CurrentLevel: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		var p models.UserPoints
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&p).Error; err != nil {
			return err
		}
		before = p

		p.TotalXP += amount
		p.MonthlyXP += amount
		// current_level never decreases outside explicit admin correction
		if lvl := models.LevelForXP(p.TotalXP); lvl > p.CurrentLevel {
			p.CurrentLevel = lvl
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		after = p
		return nil
	})
	return before, after, err
}

func (s *Store) Points(userID string) (models.UserPoints, error) {
	var p models.UserPoints
	if err := s.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return models.UserPoints{}, wrapNotFound(err, "points for user %s", userID)
	}
	return p, nil
}

// MutatePoints applies the callback to the points row under a FOR
// UPDATE lock, creating the row first if the user has none yet.
func (s *Store) MutatePoints(userID string, mutate func(p *models.UserPoints) error) (models.UserPoints, error) {
	var out models.UserPoints
	err := s.db.Transaction(func(tx *gorm.DB) error {
		seed := models.UserPoints{UserID: userID, CurrentLevel: 1}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).Create(&seed).Error; err != nil {
			return err
		}

		var p models.UserPoints
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ?", userID).First(&p).Error; err != nil {
			return err
		}
		if err := mutate(&p); err != nil {
			return err
		}
		if err := tx.Save(&p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// SetTotals overwrites the materialized totals (reconcile/admin path).
// The row is created when absent: a user with ledger entries but no
// points row is itself the drift being repaired.
func (s *Store) SetTotals(userID string, totalXP int64, level int) error {
	row := models.UserPoints{
		UserID:       userID,
		TotalXP:      totalXP,
		CurrentLevel: level,
	}
	return s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"total_xp":      totalXP,
			"current_level": level,
		}),
	}).Create(&row).Error
}

func (s *Store) LedgerSum(userID string) (int64, error) {
	var sum int64
	err := s.db.Model(&models.XPTransaction{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	return sum, err
}

func (s *Store) LedgerPage(userID string, limit, offset int) ([]models.XPTransaction, int64, error) {
	var total int64
	if err := s.db.Model(&models.XPTransaction{}).
		Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.XPTransaction
	err := s.db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows).Error
	return rows, total, err
}

// LedgerSince pages the ledger by a (created_at, id) tuple cursor. A
// timestamp-only cursor would skip rows committing with a timestamp
// equal to the last one seen.
func (s *Store) LedgerSince(userID string, after time.Time, afterID string) ([]models.XPTransaction, error) {
	var rows []models.XPTransaction
	err := s.db.Where("user_id = ? AND (created_at > ? OR (created_at = ? AND id::text > ?))",
		userID, after, after, afterID).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	return rows, err
}

func (s *Store) LedgerForRange(start, end time.Time) ([]models.XPTransaction, error) {
	var rows []models.XPTransaction
	err := s.db.Where("created_at >= ? AND created_at < ?", start, end).
		Order("created_at ASC").
		Find(&rows).Error
	return rows, err
}

// ResetMonthlyXP zeroes every non-zero monthly counter and reports how
// many rows rolled over.
func (s *Store) ResetMonthlyXP() (int64, error) {
	res := s.db.Model(&models.UserPoints{}).
		Where("monthly_xp <> 0").
		Update("monthly_xp", 0)
	return res.RowsAffected, res.Error
}
