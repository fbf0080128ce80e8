package services

import (
	"log"
	"time"

	"venue-guide-system/models"
)

// MissionStore reads the mission catalog.
type MissionStore interface {
	ActiveByTrigger(trigger models.MissionTrigger) ([]models.Mission, error)
	GetMission(id string) (models.Mission, error)
	HasPredecessor(missionID string) (bool, error)
	ListActiveMissions() ([]models.Mission, error)
}

// ProgressStore persists per-user mission counters. Increment and
// SetCounter must be single atomic statements against the
// (user_id, mission_id, period_key) unique key; ClaimCompletion must
// set completed_at at most once and report whether this call won.
type ProgressStore interface {
	Increment(userID, missionID, periodKey string, periodStart *time.Time, delta, target int) (models.MissionProgress, error)
	SetCounter(userID, missionID, periodKey string, periodStart *time.Time, value, target int) (models.MissionProgress, error)
	ClaimCompletion(userID, missionID, periodKey string, at time.Time) (bool, error)
	Ensure(userID, missionID, periodKey string, periodStart *time.Time, target int) error
	GetProgress(userID, missionID, periodKey string) (models.MissionProgress, error)
	ListProgressForUser(userID string) ([]models.MissionProgress, error)
	PruneBefore(missionType models.MissionType, cutoff time.Time) (int64, error)
}

// StatsStore records event-source mirror rows and answers the
// authoritative counts the set-absolute primitive recomputes from.
// Record* return ErrConflict when the natural unique key already
// exists, which the event paths treat as a duplicate delivery.
type StatsStore interface {
	RecordReview(r models.Review) error
	MarkReviewPhoto(reviewID, userID string) error
	RecordFollow(f models.Follow) error
	RecordVote(v models.ReviewVote) error

	ReviewCount(userID string) (int, error)
	PhotoReviewCount(userID string) (int, error)
	CheckInsOnDay(userID, dayKey string) (int, error)
	VerifiedCheckInCount(userID string) (int, error)
	DistinctVenueCount(userID string) (int, error)
	DistinctZoneCount(userID string, since time.Time) (int, error)
	FollowerCount(userID string) (int, error)
	HelpfulVotesReceived(userID string) (int, error)
}

// Event payloads carry enough to mirror the source row locally;
// counters are then recomputed from the mirror, never from
// caller-supplied deltas.
type ReviewEvent struct {
	ReviewID        string
	UserID          string
	EstablishmentID string
	Rating          int
	HasPhoto        bool
}

type VoteEvent struct {
	VoterID  string
	ReviewID string
	AuthorID string
	Helpful  bool
}

type FollowEvent struct {
	FollowerID string
	FollowedID string
}

type PhotoEvent struct {
	UserID   string
	ReviewID string
}

// MissionService maps domain events onto the missions they can affect
// and drives the reward-on-completion chain.
type MissionService struct {
	Missions MissionStore
	Progress ProgressStore
	Stats    StatsStore
	XP       *XPService
	Badges   *BadgeService
	Streaks  *StreakService
	Weights  XPWeights

	// Periodic progress rows older than this many days are pruned by
	// the reset jobs; zero keeps history forever.
	HistoryRetentionDays int
}

func NewMissionService(missions MissionStore, progress ProgressStore, stats StatsStore, xp *XPService, badges *BadgeService, streaks *StreakService) *MissionService {
	return &MissionService{
		Missions: missions,
		Progress: progress,
		Stats:    stats,
		XP:       xp,
		Badges:   badges,
		Streaks:  streaks,
		Weights:  DefaultXPWeights,
	}
}

// OnCheckIn processes a freshly stored check-in. Only verified
// check-ins earn XP and move missions; unverified ones were recorded
// for history upstream and stop here.
func (s *MissionService) OnCheckIn(ci models.CheckIn, now time.Time) error {
	if ci.UserID == "" {
		return validationf("check-in missing user id")
	}
	if !ci.Verified {
		log.Printf("📍 Unverified check-in recorded only: user=%s venue=%s dist=%.0fm", ci.UserID, ci.EstablishmentID, ci.DistanceMeters)
		return nil
	}

	s.awardBase(ci.UserID, s.Weights.CheckInXP, models.SourceCheckIn, "check_in", ci.ID)
	s.recordActivity(ci.UserID, now)
	s.updateMissionsFor(ci.UserID, models.TriggerCheckIn, now)
	s.evaluateBadges(ci.UserID, models.TriggerCheckIn)
	return nil
}

// OnReviewCreated mirrors the review and credits its author. A
// duplicate review id means a redelivered event and is dropped.
func (s *MissionService) OnReviewCreated(ev ReviewEvent, now time.Time) error {
	if ev.UserID == "" || ev.ReviewID == "" {
		return validationf("review event missing ids")
	}
	err := s.Stats.RecordReview(models.Review{
		ID:              ev.ReviewID,
		UserID:          ev.UserID,
		EstablishmentID: ev.EstablishmentID,
		Rating:          ev.Rating,
		HasPhoto:        ev.HasPhoto,
	})
	if err != nil {
		if isConflict(err) {
			log.Printf("↩️ Duplicate review event dropped: review=%s", ev.ReviewID)
			return nil
		}
		return err
	}

	s.awardBase(ev.UserID, s.Weights.ReviewXP, models.SourceReviewCreated, "review", ev.ReviewID)
	s.recordActivity(ev.UserID, now)
	s.updateMissionsFor(ev.UserID, models.TriggerReviewCreated, now)
	s.evaluateBadges(ev.UserID, models.TriggerReviewCreated)
	if ev.HasPhoto {
		s.updateMissionsFor(ev.UserID, models.TriggerPhotoUploaded, now)
		s.evaluateBadges(ev.UserID, models.TriggerPhotoUploaded)
	}
	return nil
}

// OnVoteCast mirrors the vote, credits the voter, and when the vote is
// helpful also recomputes the review author's received-votes counters.
func (s *MissionService) OnVoteCast(ev VoteEvent, now time.Time) error {
	if ev.VoterID == "" || ev.ReviewID == "" {
		return validationf("vote event missing ids")
	}
	err := s.Stats.RecordVote(models.ReviewVote{
		VoterID:  ev.VoterID,
		ReviewID: ev.ReviewID,
		AuthorID: ev.AuthorID,
		Helpful:  ev.Helpful,
	})
	if err != nil {
		if isConflict(err) {
			log.Printf("↩️ Duplicate vote event dropped: voter=%s review=%s", ev.VoterID, ev.ReviewID)
			return nil
		}
		return err
	}

	s.awardBase(ev.VoterID, s.Weights.VoteXP, models.SourceVoteCast, "review", ev.ReviewID)
	s.recordActivity(ev.VoterID, now)
	s.updateMissionsFor(ev.VoterID, models.TriggerVoteCast, now)
	s.evaluateBadges(ev.VoterID, models.TriggerVoteCast)

	if ev.Helpful && ev.AuthorID != "" {
		if err := s.OnHelpfulVoteReceived(ev.AuthorID, ev.ReviewID, now); err != nil {
			log.Printf("⚠️ helpful-vote credit failed: author=%s: %v", ev.AuthorID, err)
		}
	}
	return nil
}

// OnHelpfulVoteReceived credits a review author whose review collected
// a helpful vote. Counters are recomputed, so redelivery is harmless.
func (s *MissionService) OnHelpfulVoteReceived(authorID, reviewID string, now time.Time) error {
	if authorID == "" {
		return validationf("author id is required")
	}
	s.awardBase(authorID, s.Weights.HelpfulReceivedXP, models.SourceHelpfulVoteReceived, "review", reviewID)
	s.updateMissionsFor(authorID, models.TriggerHelpfulVoteReceived, now)
	s.evaluateBadges(authorID, models.TriggerHelpfulVoteReceived)
	return nil
}

// OnFollowAction mirrors the follow pair, credits the follower, and
// recomputes the followed user's audience counters.
func (s *MissionService) OnFollowAction(ev FollowEvent, now time.Time) error {
	if ev.FollowerID == "" || ev.FollowedID == "" {
		return validationf("follow event missing ids")
	}
	if ev.FollowerID == ev.FollowedID {
		return validationf("cannot follow yourself")
	}
	err := s.Stats.RecordFollow(models.Follow{FollowerID: ev.FollowerID, FollowedID: ev.FollowedID})
	if err != nil {
		if isConflict(err) {
			log.Printf("↩️ Duplicate follow event dropped: %s → %s", ev.FollowerID, ev.FollowedID)
			return nil
		}
		return err
	}

	s.awardBase(ev.FollowerID, s.Weights.FollowXP, models.SourceFollow, "user", ev.FollowedID)
	s.recordActivity(ev.FollowerID, now)
	s.updateMissionsFor(ev.FollowerID, models.TriggerFollow, now)
	s.evaluateBadges(ev.FollowerID, models.TriggerFollow)
	// Audience-side counters belong to the followed user.
	s.updateMissionsFor(ev.FollowedID, models.TriggerFollow, now)
	s.evaluateBadges(ev.FollowedID, models.TriggerFollow)
	return nil
}

// OnPhotoUploaded marks the review as carrying a photo and credits the
// uploader. The mark is idempotent.
func (s *MissionService) OnPhotoUploaded(ev PhotoEvent, now time.Time) error {
	if ev.UserID == "" || ev.ReviewID == "" {
		return validationf("photo event missing ids")
	}
	if err := s.Stats.MarkReviewPhoto(ev.ReviewID, ev.UserID); err != nil {
		return err
	}
	s.awardBase(ev.UserID, s.Weights.PhotoXP, models.SourcePhotoUploaded, "review", ev.ReviewID)
	s.updateMissionsFor(ev.UserID, models.TriggerPhotoUploaded, now)
	s.evaluateBadges(ev.UserID, models.TriggerPhotoUploaded)
	return nil
}

// ListProgress returns the user's progress rows for presentation.
func (s *MissionService) ListProgress(userID string) ([]models.MissionProgress, error) {
	return s.Progress.ListProgressForUser(userID)
}

// MissionStatus pairs a catalog mission with the user's progress row
// for the current period, nil when the user has not started it.
type MissionStatus struct {
	Mission  models.Mission          `json:"mission"`
	Progress *models.MissionProgress `json:"progress,omitempty"`
}

// MissionBoard returns every active mission with the user's progress
// for the current period. Locked narrative steps are omitted.
func (s *MissionService) MissionBoard(userID string, now time.Time) ([]MissionStatus, error) {
	if userID == "" {
		return nil, validationf("user id is required")
	}
	missions, err := s.Missions.ListActiveMissions()
	if err != nil {
		return nil, err
	}
	rows, err := s.Progress.ListProgressForUser(userID)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]models.MissionProgress, len(rows))
	for _, r := range rows {
		byKey[r.MissionID+"|"+r.PeriodKey] = r
	}

	board := make([]MissionStatus, 0, len(missions))
	for _, m := range missions {
		if m.Type == models.MissionNarrative {
			locked, err := s.narrativeLocked(userID, m)
			if err != nil {
				return nil, err
			}
			if locked {
				continue
			}
		}
		periodKey, _ := missionPeriod(m.Type, now)
		st := MissionStatus{Mission: m}
		if r, ok := byKey[m.ID+"|"+periodKey]; ok {
			prog := r
			st.Progress = &prog
		}
		board = append(board, st)
	}
	return board, nil
}

// ResetDailyMissions is invoked by the scheduler at 00:00 reference
// time. Progress rows are keyed by period, so the rollover itself is
// implicit; the job keeps history within the retention policy.
func (s *MissionService) ResetDailyMissions(now time.Time) error {
	log.Printf("🌅 Daily mission rollover → period %s", DayKey(now))
	return s.pruneHistory(models.MissionDaily, now)
}

// ResetWeeklyMissions runs Mondays at 00:00 reference time.
func (s *MissionService) ResetWeeklyMissions(now time.Time) error {
	log.Printf("📅 Weekly mission rollover → period %s", WeekKey(now))
	return s.pruneHistory(models.MissionWeekly, now)
}

func (s *MissionService) pruneHistory(t models.MissionType, now time.Time) error {
	if s.HistoryRetentionDays <= 0 {
		return nil
	}
	cutoff := DayStart(now).AddDate(0, 0, -s.HistoryRetentionDays)
	n, err := s.Progress.PruneBefore(t, cutoff)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("🧹 Pruned %d %s progress rows older than %s", n, t, cutoff.Format("2006-01-02"))
	}
	return nil
}

// updateMissionsFor advances every active mission listening to the
// trigger. Per-mission failures are logged and skipped so one bad row
// cannot block the rest of the event.
func (s *MissionService) updateMissionsFor(userID string, trigger models.MissionTrigger, now time.Time) {
	missions, err := s.Missions.ActiveByTrigger(trigger)
	if err != nil {
		log.Printf("⚠️ mission lookup failed for trigger=%s: %v", trigger, err)
		return
	}
	for _, m := range missions {
		if err := s.updateMission(userID, m, now); err != nil {
			log.Printf("⚠️ mission update failed: user=%s mission=%s: %v", userID, m.Code, err)
		}
	}
}

func (s *MissionService) updateMission(userID string, m models.Mission, now time.Time) error {
	periodKey, periodStart := missionPeriod(m.Type, now)

	// Narrative steps only progress once unlocked: the chain head is
	// always available, later steps need the row their predecessor's
	// completion created.
	if m.Type == models.MissionNarrative {
		locked, err := s.narrativeLocked(userID, m)
		if err != nil {
			return err
		}
		if locked {
			return nil
		}
	}

	var prog models.MissionProgress
	value, absolute, err := s.counterValue(userID, m.Requirement, now)
	if err != nil {
		return err
	}
	if absolute {
		prog, err = s.Progress.SetCounter(userID, m.ID, periodKey, periodStart, value, m.Target)
	} else {
		prog, err = s.Progress.Increment(userID, m.ID, periodKey, periodStart, 1, m.Target)
	}
	if err != nil {
		return err
	}

	if prog.ProgressCounter >= m.Target && !prog.Completed() {
		claimed, err := s.Progress.ClaimCompletion(userID, m.ID, periodKey, now)
		if err != nil {
			return err
		}
		if claimed {
			s.completeMission(userID, m, now)
		}
	}
	return nil
}

// completeMission runs exactly once per (user, mission, period): the
// ClaimCompletion winner gets here, every racing loser saw claimed=false.
func (s *MissionService) completeMission(userID string, m models.Mission, now time.Time) {
	log.Printf("🏁 Mission completed: user=%s mission=%s (+%d XP)", userID, m.Code, m.RewardXP)

	if m.RewardXP > 0 {
		if _, err := s.XP.Award(userID, m.RewardXP, models.SourceMissionReward, "mission", m.ID, m.Name); err != nil {
			log.Printf("⚠️ mission reward award failed: user=%s mission=%s: %v", userID, m.Code, err)
		}
	}
	s.XP.dispatch(userID, NotifyMissionCompleted, map[string]string{
		"mission":   m.Code,
		"name":      m.Name,
		"reward_xp": itoa64(m.RewardXP),
	})

	if m.RewardBadgeID != nil {
		if _, err := s.Badges.AwardByID(userID, *m.RewardBadgeID); err != nil {
			log.Printf("⚠️ mission badge award failed: user=%s badge=%s: %v", userID, *m.RewardBadgeID, err)
		}
	}

	if m.NextMissionID != nil {
		next, err := s.Missions.GetMission(*m.NextMissionID)
		if err != nil {
			log.Printf("⚠️ next mission lookup failed: %s: %v", *m.NextMissionID, err)
			return
		}
		nextKey, nextStart := missionPeriod(next.Type, now)
		if err := s.Progress.Ensure(userID, next.ID, nextKey, nextStart, next.Target); err != nil {
			log.Printf("⚠️ next mission activation failed: user=%s mission=%s: %v", userID, next.Code, err)
		} else {
			log.Printf("➡️ Narrative step unlocked: user=%s mission=%s", userID, next.Code)
		}
	}
}

func (s *MissionService) narrativeLocked(userID string, m models.Mission) (bool, error) {
	chained, err := s.Missions.HasPredecessor(m.ID)
	if err != nil {
		return false, err
	}
	if !chained {
		return false, nil // chain head is always open
	}
	if _, err := s.Progress.GetProgress(userID, m.ID, ""); err != nil {
		if isNotFound(err) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// counterValue resolves a requirement kind to its current value and
// whether it is recomputed absolutely. Absolute kinds make concurrent
// or redelivered triggers structurally harmless; the remaining kinds
// ride on an upstream unique pair and use atomic increments.
func (s *MissionService) counterValue(userID string, kind models.RequirementKind, now time.Time) (int, bool, error) {
	switch kind {
	case models.ReqCheckInsToday:
		v, err := s.Stats.CheckInsOnDay(userID, DayKey(now))
		return v, true, err
	case models.ReqVerifiedCheckIns:
		v, err := s.Stats.VerifiedCheckInCount(userID)
		return v, true, err
	case models.ReqDistinctVenues:
		v, err := s.Stats.DistinctVenueCount(userID)
		return v, true, err
	case models.ReqDistinctZonesWeek:
		v, err := s.Stats.DistinctZoneCount(userID, WeekStart(now))
		return v, true, err
	case models.ReqReviewsTotal:
		v, err := s.Stats.ReviewCount(userID)
		return v, true, err
	case models.ReqPhotoReviewsTotal:
		v, err := s.Stats.PhotoReviewCount(userID)
		return v, true, err
	case models.ReqFollowersTotal:
		v, err := s.Stats.FollowerCount(userID)
		return v, true, err
	case models.ReqHelpfulVotesTotal:
		v, err := s.Stats.HelpfulVotesReceived(userID)
		return v, true, err
	case models.ReqVotesCastWeek, models.ReqFollowsMade:
		return 0, false, nil
	default:
		return 0, false, validationf("unknown requirement kind %q", kind)
	}
}

func missionPeriod(t models.MissionType, now time.Time) (string, *time.Time) {
	switch t {
	case models.MissionDaily:
		start := DayStart(now)
		return DayKey(now), &start
	case models.MissionWeekly:
		start := WeekStart(now)
		return WeekKey(now), &start
	default:
		return "", nil
	}
}

func (s *MissionService) awardBase(userID string, amount int64, source models.XPSource, entityType, entityID string) {
	if amount <= 0 {
		return
	}
	if _, err := s.XP.Award(userID, amount, source, entityType, entityID, ""); err != nil {
		log.Printf("⚠️ base XP award failed: user=%s source=%s: %v", userID, source, err)
	}
}

func (s *MissionService) recordActivity(userID string, now time.Time) {
	if s.Streaks == nil {
		return
	}
	if _, err := s.Streaks.RecordActivity(userID, now); err != nil {
		log.Printf("⚠️ streak update failed: user=%s: %v", userID, err)
	}
}

func (s *MissionService) evaluateBadges(userID string, trigger models.MissionTrigger) {
	if s.Badges == nil {
		return
	}
	if _, err := s.Badges.Evaluate(userID, trigger); err != nil {
		log.Printf("⚠️ badge evaluation failed: user=%s trigger=%s: %v", userID, trigger, err)
	}
}
