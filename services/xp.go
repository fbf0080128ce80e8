package services

import (
	"log"
	"time"

	"venue-guide-system/models"
)

// XPWeights define the base XP value of each triggering action
// (tunable via env later).
type XPWeights struct {
	CheckInXP         int64
	ReviewXP          int64
	PhotoXP           int64
	VoteXP            int64
	FollowXP          int64
	HelpfulReceivedXP int64
}

var DefaultXPWeights = XPWeights{
	CheckInXP:         20,
	ReviewXP:          50,
	PhotoXP:           15,
	VoteXP:            5,
	FollowXP:          5,
	HelpfulReceivedXP: 10,
}

// PointsStore is the persistence contract for the materialized points
// row and the append-only ledger. ApplyAward must run the ledger insert
// and the points upsert in one transactional boundary so a crash cannot
// leave them inconsistent.
type PointsStore interface {
	ApplyAward(userID string, amount int64, row *models.XPTransaction) (before, after models.UserPoints, err error)
	Points(userID string) (models.UserPoints, error)
	MutatePoints(userID string, mutate func(p *models.UserPoints) error) (models.UserPoints, error)
	SetTotals(userID string, totalXP int64, level int) error
	LedgerSum(userID string) (int64, error)
	LedgerPage(userID string, limit, offset int) ([]models.XPTransaction, int64, error)
	LedgerSince(userID string, after time.Time, afterID string) ([]models.XPTransaction, error)
	LedgerForRange(start, end time.Time) ([]models.XPTransaction, error)
	ResetMonthlyXP() (int64, error)
}

// Notifier accepts fire-and-forget dispatches; a failed dispatch is
// logged by the caller and never fails the triggering award.
type Notifier interface {
	Dispatch(userID, templateKey string, params map[string]string) error
}

// LedgerArchiver receives a closed month's transactions for cold storage.
type LedgerArchiver interface {
	ArchiveMonth(monthStart time.Time, rows []models.XPTransaction) error
}

const (
	NotifyLevelUp          = "level_up"
	NotifyBadgeAwarded     = "badge_awarded"
	NotifyMissionCompleted = "mission_completed"
)

type XPService struct {
	Points  PointsStore
	Notify  Notifier
	Archive LedgerArchiver // optional
}

func NewXPService(points PointsStore, notify Notifier) *XPService {
	return &XPService{Points: points, Notify: notify}
}

// Award appends a ledger entry and updates the materialized totals in
// one transaction, then dispatches a level-up notification when the
// post-award level exceeds the pre-award one. Partial success is not
// possible: on error the award was not applied.
func (s *XPService) Award(userID string, amount int64, source models.XPSource, entityType, entityID, description string) (models.UserPoints, error) {
	if userID == "" {
		return models.UserPoints{}, validationf("user id is required")
	}
	if amount <= 0 {
		return models.UserPoints{}, validationf("xp amount must be positive, got %d", amount)
	}
	if !source.Valid() {
		return models.UserPoints{}, validationf("unknown xp source %q", source)
	}

	row := &models.XPTransaction{
		UserID:            userID,
		Amount:            amount,
		Source:            source,
		RelatedEntityType: entityType,
		RelatedEntityID:   entityID,
		Description:       description,
	}

	before, after, err := s.Points.ApplyAward(userID, amount, row)
	if err != nil {
		return models.UserPoints{}, err
	}

	log.Printf("🎮 XP awarded: user=%s +%d (%s) → total=%d lvl=%d",
		userID, amount, source, after.TotalXP, after.CurrentLevel)

	if after.CurrentLevel > before.CurrentLevel {
		s.dispatch(userID, NotifyLevelUp, map[string]string{
			"level":         itoa(after.CurrentLevel),
			"total_xp":      itoa64(after.TotalXP),
			"next_level_xp": itoa64(models.XPForNextLevel(after.CurrentLevel)),
		})
	}
	return after, nil
}

// Progress returns the points row, creating nothing; absent users read
// as zero-valued level-1 progress.
func (s *XPService) Progress(userID string) (models.UserPoints, error) {
	p, err := s.Points.Points(userID)
	if err == nil {
		return p, nil
	}
	if isNotFound(err) {
		return models.UserPoints{UserID: userID, CurrentLevel: 1}, nil
	}
	return models.UserPoints{}, err
}

// History returns a page of the user's ledger, newest first.
func (s *XPService) History(userID string, page, size int) ([]models.XPTransaction, int64, error) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 20
	}
	return s.Points.LedgerPage(userID, size, (page-1)*size)
}

// Reconcile recomputes the materialized total from the ledger sum and
// repairs the row on drift. The ledger is the source of truth; the
// points row is only a cache of it.
func (s *XPService) Reconcile(userID string) (drift int64, err error) {
	if userID == "" {
		return 0, validationf("user id is required")
	}
	sum, err := s.Points.LedgerSum(userID)
	if err != nil {
		return 0, err
	}
	p, err := s.Points.Points(userID)
	switch {
	case err == nil:
	case isNotFound(err):
		if sum == 0 {
			return 0, nil
		}
		// Missing row with a nonzero ledger: SetTotals materializes it.
	default:
		return 0, err
	}
	drift = sum - p.TotalXP
	if drift == 0 {
		return 0, nil
	}
	level := models.LevelForXP(sum)
	if level < p.CurrentLevel {
		level = p.CurrentLevel // level never decreases outside admin correction
	}
	if err := s.Points.SetTotals(userID, sum, level); err != nil {
		return 0, err
	}
	log.Printf("🛠️ Ledger reconcile: user=%s drift=%+d → total=%d", userID, drift, sum)
	return drift, nil
}

// ResetMonthlyXP archives the closed month's ledger (when an archiver
// is configured) and zeroes every monthly counter. Invoked by the
// scheduler on the 1st at 00:00 reference time.
func (s *XPService) ResetMonthlyXP(now time.Time) error {
	monthStart := MonthStart(now)
	prevStart := monthStart.AddDate(0, -1, 0)

	if s.Archive != nil {
		rows, err := s.Points.LedgerForRange(prevStart, monthStart)
		if err != nil {
			log.Printf("⚠️ monthly archive skipped, ledger read failed: %v", err)
		} else if err := s.Archive.ArchiveMonth(prevStart, rows); err != nil {
			log.Printf("⚠️ monthly archive failed: %v", err)
		}
	}

	n, err := s.Points.ResetMonthlyXP()
	if err != nil {
		return err
	}
	log.Printf("🔄 Monthly XP reset: %d user rows zeroed (period %s)", n, prevStart.Format("2006-01"))
	return nil
}

func (s *XPService) dispatch(userID, template string, params map[string]string) {
	if s.Notify == nil {
		return
	}
	if err := s.Notify.Dispatch(userID, template, params); err != nil {
		log.Printf("⚠️ notification dispatch failed: user=%s template=%s: %v", userID, template, err)
	}
}
