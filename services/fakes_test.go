package services

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"venue-guide-system/models"
)

func isValidationErr(err error) bool { return errors.Is(err, ErrValidation) }

// fakeStore is an in-memory stand-in for the GORM store so service
// behavior can be exercised without Postgres. It mirrors the storage
// contracts exactly: conflict on duplicate natural keys, LEAST-capped
// counters frozen after completion, claim-once semantics.
type fakeStore struct {
	mu sync.Mutex

	points     map[string]*models.UserPoints
	ledger     []models.XPTransaction
	missions   []models.Mission
	progress   map[string]*models.MissionProgress
	badges     []models.Badge
	userBadges []models.UserBadge

	reviews  map[string]models.Review
	votes    map[string]models.ReviewVote
	follows  map[string]models.Follow
	checkins []models.CheckIn
	venues   map[string]models.Establishment

	base time.Time
	seq  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		points:   map[string]*models.UserPoints{},
		progress: map[string]*models.MissionProgress{},
		reviews:  map[string]models.Review{},
		votes:    map[string]models.ReviewVote{},
		follows:  map[string]models.Follow{},
		venues:   map[string]models.Establishment{},
		base:     time.Now().Add(-time.Hour),
	}
}

func (f *fakeStore) nextID() string {
	f.seq++
	return fmt.Sprintf("id-%04d", f.seq)
}

func (f *fakeStore) tick() time.Time {
	f.seq++
	return f.base.Add(time.Duration(f.seq) * time.Millisecond)
}

func progressKey(userID, missionID, periodKey string) string {
	return userID + "|" + missionID + "|" + periodKey
}

// --- seeding helpers ---

func (f *fakeStore) addMission(m models.Mission) models.Mission {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m.ID == "" {
		m.ID = f.nextID()
	}
	f.missions = append(f.missions, m)
	return m
}

func (f *fakeStore) linkMissions(fromID, toID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.missions {
		if f.missions[i].ID == fromID {
			next := toID
			f.missions[i].NextMissionID = &next
		}
	}
}

func (f *fakeStore) addBadge(b models.Badge) models.Badge {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b.ID == "" {
		b.ID = f.nextID()
	}
	f.badges = append(f.badges, b)
	return b
}

func (f *fakeStore) addVenue(e models.Establishment) models.Establishment {
	f.mu.Lock()
	defer f.mu.Unlock()
	if e.ID == "" {
		e.ID = f.nextID()
	}
	f.venues[e.ID] = e
	return e
}

func (f *fakeStore) ledgerCount(source models.XPSource) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.ledger {
		if r.Source == source {
			n++
		}
	}
	return n
}

// --- PointsStore ---

func (f *fakeStore) ensurePointsLocked(userID string) *models.UserPoints {
	p, ok := f.points[userID]
	if !ok {
		p = &models.UserPoints{UserID: userID, CurrentLevel: 1}
		f.points[userID] = p
	}
	return p
}

func (f *fakeStore) ApplyAward(userID string, amount int64, row *models.XPTransaction) (models.UserPoints, models.UserPoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	row.ID = f.nextID()
	row.CreatedAt = f.tick()
	f.ledger = append(f.ledger, *row)

	p := f.ensurePointsLocked(userID)
	before := *p
	p.TotalXP += amount
	p.MonthlyXP += amount
	if lvl := models.LevelForXP(p.TotalXP); lvl > p.CurrentLevel {
		p.CurrentLevel = lvl
	}
	return before, *p, nil
}

func (f *fakeStore) Points(userID string) (models.UserPoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.points[userID]
	if !ok {
		return models.UserPoints{}, notFoundf("points for user %s", userID)
	}
	return *p, nil
}

func (f *fakeStore) MutatePoints(userID string, mutate func(p *models.UserPoints) error) (models.UserPoints, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.ensurePointsLocked(userID)
	if err := mutate(p); err != nil {
		return models.UserPoints{}, err
	}
	return *p, nil
}

func (f *fakeStore) SetTotals(userID string, totalXP int64, level int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.ensurePointsLocked(userID)
	p.TotalXP = totalXP
	p.CurrentLevel = level
	return nil
}

func (f *fakeStore) LedgerSum(userID string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var sum int64
	for _, r := range f.ledger {
		if r.UserID == userID {
			sum += r.Amount
		}
	}
	return sum, nil
}

func (f *fakeStore) LedgerPage(userID string, limit, offset int) ([]models.XPTransaction, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var all []models.XPTransaction
	for _, r := range f.ledger {
		if r.UserID == userID {
			all = append(all, r)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (f *fakeStore) LedgerSince(userID string, after time.Time, afterID string) ([]models.XPTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.XPTransaction
	for _, r := range f.ledger {
		if r.UserID != userID {
			continue
		}
		if r.CreatedAt.After(after) || (r.CreatedAt.Equal(after) && r.ID > afterID) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (f *fakeStore) LedgerForRange(start, end time.Time) ([]models.XPTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.XPTransaction
	for _, r := range f.ledger {
		if !r.CreatedAt.Before(start) && r.CreatedAt.Before(end) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) ResetMonthlyXP() (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, p := range f.points {
		if p.MonthlyXP != 0 {
			p.MonthlyXP = 0
			n++
		}
	}
	return n, nil
}

// --- MissionStore ---

func (f *fakeStore) ActiveByTrigger(trigger models.MissionTrigger) ([]models.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Mission
	for _, m := range f.missions {
		if m.IsActive && m.Trigger == trigger {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) GetMission(id string) (models.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.missions {
		if m.ID == id {
			return m, nil
		}
	}
	return models.Mission{}, notFoundf("mission %s", id)
}

func (f *fakeStore) HasPredecessor(missionID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.missions {
		if m.NextMissionID != nil && *m.NextMissionID == missionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) ListActiveMissions() ([]models.Mission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Mission
	for _, m := range f.missions {
		if m.IsActive {
			out = append(out, m)
		}
	}
	return out, nil
}

// --- ProgressStore ---

func (f *fakeStore) Increment(userID, missionID, periodKey string, periodStart *time.Time, delta, target int) (models.MissionProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey(userID, missionID, periodKey)
	p, ok := f.progress[key]
	if !ok {
		initial := delta
		if initial > target {
			initial = target
		}
		p = &models.MissionProgress{
			ID: f.nextID(), UserID: userID, MissionID: missionID,
			PeriodKey: periodKey, PeriodStart: periodStart,
			ProgressCounter: initial, Target: target,
		}
		f.progress[key] = p
		return *p, nil
	}
	if p.CompletedAt == nil {
		p.ProgressCounter += delta
		if p.ProgressCounter > p.Target {
			p.ProgressCounter = p.Target
		}
	}
	return *p, nil
}

func (f *fakeStore) SetCounter(userID, missionID, periodKey string, periodStart *time.Time, value, target int) (models.MissionProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey(userID, missionID, periodKey)
	p, ok := f.progress[key]
	if !ok {
		initial := value
		if initial > target {
			initial = target
		}
		p = &models.MissionProgress{
			ID: f.nextID(), UserID: userID, MissionID: missionID,
			PeriodKey: periodKey, PeriodStart: periodStart,
			ProgressCounter: initial, Target: target,
		}
		f.progress[key] = p
		return *p, nil
	}
	if p.CompletedAt == nil {
		p.ProgressCounter = value
		if p.ProgressCounter > p.Target {
			p.ProgressCounter = p.Target
		}
	}
	return *p, nil
}

func (f *fakeStore) ClaimCompletion(userID, missionID, periodKey string, at time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.progress[progressKey(userID, missionID, periodKey)]
	if !ok || p.CompletedAt != nil || p.ProgressCounter < p.Target {
		return false, nil
	}
	done := at
	p.CompletedAt = &done
	return true, nil
}

func (f *fakeStore) Ensure(userID, missionID, periodKey string, periodStart *time.Time, target int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := progressKey(userID, missionID, periodKey)
	if _, ok := f.progress[key]; ok {
		return nil
	}
	f.progress[key] = &models.MissionProgress{
		ID: f.nextID(), UserID: userID, MissionID: missionID,
		PeriodKey: periodKey, PeriodStart: periodStart, Target: target,
	}
	return nil
}

func (f *fakeStore) GetProgress(userID, missionID, periodKey string) (models.MissionProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.progress[progressKey(userID, missionID, periodKey)]
	if !ok {
		return models.MissionProgress{}, notFoundf("progress user=%s mission=%s period=%q", userID, missionID, periodKey)
	}
	return *p, nil
}

func (f *fakeStore) ListProgressForUser(userID string) ([]models.MissionProgress, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.MissionProgress
	for _, p := range f.progress {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeStore) PruneBefore(missionType models.MissionType, cutoff time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ofType := map[string]bool{}
	for _, m := range f.missions {
		if m.Type == missionType {
			ofType[m.ID] = true
		}
	}
	var n int64
	for key, p := range f.progress {
		if ofType[p.MissionID] && p.PeriodStart != nil && p.PeriodStart.Before(cutoff) {
			delete(f.progress, key)
			n++
		}
	}
	return n, nil
}

// --- StatsStore ---

func (f *fakeStore) RecordReview(r models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.reviews[r.ID]; ok {
		return fmt.Errorf("%w: review %s already recorded", ErrConflict, r.ID)
	}
	r.CreatedAt = f.tick()
	f.reviews[r.ID] = r
	return nil
}

func (f *fakeStore) MarkReviewPhoto(reviewID, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[reviewID]
	if !ok || r.UserID != userID {
		return notFoundf("review %s for user %s", reviewID, userID)
	}
	r.HasPhoto = true
	f.reviews[reviewID] = r
	return nil
}

func (f *fakeStore) RecordFollow(fl models.Follow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := fl.FollowerID + "|" + fl.FollowedID
	if _, ok := f.follows[key]; ok {
		return fmt.Errorf("%w: follow %s → %s already recorded", ErrConflict, fl.FollowerID, fl.FollowedID)
	}
	f.follows[key] = fl
	return nil
}

func (f *fakeStore) RecordVote(v models.ReviewVote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := v.VoterID + "|" + v.ReviewID
	if _, ok := f.votes[key]; ok {
		return fmt.Errorf("%w: vote %s on %s already recorded", ErrConflict, v.VoterID, v.ReviewID)
	}
	f.votes[key] = v
	return nil
}

func (f *fakeStore) ReviewCount(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.reviews {
		if r.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) PhotoReviewCount(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.reviews {
		if r.UserID == userID && r.HasPhoto {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) CheckInsOnDay(userID, dayKey string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.checkins {
		if c.UserID == userID && c.CheckinDay == dayKey && c.Verified {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) VerifiedCheckInCount(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.checkins {
		if c.UserID == userID && c.Verified {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) DistinctVenueCount(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	for _, c := range f.checkins {
		if c.UserID == userID && c.Verified {
			seen[c.EstablishmentID] = true
		}
	}
	return len(seen), nil
}

func (f *fakeStore) DistinctZoneCount(userID string, since time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]bool{}
	for _, c := range f.checkins {
		if c.UserID == userID && c.Verified && !c.CreatedAt.Before(since) {
			seen[c.Zone] = true
		}
	}
	return len(seen), nil
}

func (f *fakeStore) FollowerCount(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, fl := range f.follows {
		if fl.FollowedID == userID {
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) HelpfulVotesReceived(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.votes {
		if v.AuthorID == userID && v.Helpful {
			n++
		}
	}
	return n, nil
}

// --- BadgeStore ---

func (f *fakeStore) ActiveBadges() ([]models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Badge
	for _, b := range f.badges {
		if b.IsActive {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeStore) GetBadge(id string) (models.Badge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, b := range f.badges {
		if b.ID == id {
			return b, nil
		}
	}
	return models.Badge{}, notFoundf("badge %s", id)
}

func (f *fakeStore) TryAward(userID, badgeID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ub := range f.userBadges {
		if ub.UserID == userID && ub.BadgeID == badgeID {
			return false, nil
		}
	}
	f.userBadges = append(f.userBadges, models.UserBadge{
		ID: f.nextID(), UserID: userID, BadgeID: badgeID, AwardedAt: f.tick(),
	})
	return true, nil
}

func (f *fakeStore) ListBadgesForUser(userID string) ([]models.UserBadge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.UserBadge
	for _, ub := range f.userBadges {
		if ub.UserID == userID {
			out = append(out, ub)
		}
	}
	return out, nil
}

// --- CheckInStore ---

func (f *fakeStore) CreateCheckIn(ci *models.CheckIn) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.checkins {
		if c.UserID == ci.UserID && c.EstablishmentID == ci.EstablishmentID && c.CheckinDay == ci.CheckinDay {
			return fmt.Errorf("%w: already checked in at %s on %s", ErrConflict, ci.EstablishmentID, ci.CheckinDay)
		}
	}
	ci.ID = f.nextID()
	ci.CreatedAt = f.tick()
	f.checkins = append(f.checkins, *ci)
	return nil
}

func (f *fakeStore) EstablishmentByID(id string) (models.Establishment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.venues[id]
	if !ok {
		return models.Establishment{}, notFoundf("establishment %s", id)
	}
	return e, nil
}

func (f *fakeStore) ListCheckInsForUser(userID string, limit int) ([]models.CheckIn, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.CheckIn
	for _, c := range f.checkins {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// --- Notifier ---

type fakeNotifier struct {
	mu         sync.Mutex
	dispatches []fakeDispatch
}

type fakeDispatch struct {
	UserID   string
	Template string
	Params   map[string]string
}

func (n *fakeNotifier) Dispatch(userID, templateKey string, params map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.dispatches = append(n.dispatches, fakeDispatch{UserID: userID, Template: templateKey, Params: params})
	return nil
}

func (n *fakeNotifier) count(template string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, d := range n.dispatches {
		if d.Template == template {
			c++
		}
	}
	return c
}

// --- LedgerArchiver ---

type fakeArchiver struct {
	mu     sync.Mutex
	months []time.Time
	rows   int
}

func (a *fakeArchiver) ArchiveMonth(monthStart time.Time, rows []models.XPTransaction) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.months = append(a.months, monthStart)
	a.rows += len(rows)
	return nil
}

// --- assembled engine ---

type testEngine struct {
	store    *fakeStore
	notifier *fakeNotifier
	xp       *XPService
	streaks  *StreakService
	badges   *BadgeService
	missions *MissionService
	checkins *CheckInService
}

func newTestEngine() *testEngine {
	store := newFakeStore()
	notifier := &fakeNotifier{}
	xp := NewXPService(store, notifier)
	streaks := NewStreakService(store)
	badges := NewBadgeService(store, store, store, xp)
	missions := NewMissionService(store, store, store, xp, badges, streaks)
	return &testEngine{
		store:    store,
		notifier: notifier,
		xp:       xp,
		streaks:  streaks,
		badges:   badges,
		missions: missions,
		checkins: NewCheckInService(store, missions),
	}
}
