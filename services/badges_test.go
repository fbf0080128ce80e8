package services

import (
	"testing"
	"time"

	"venue-guide-system/models"
)

func TestBadgeAwardedAtMostOnce(t *testing.T) {
	eng := newTestEngine()
	badge := eng.store.addBadge(models.Badge{
		Code: "FIRST_REVIEW", Name: "Opening Act",
		Category: models.BadgeCategoryReviewer, Rarity: models.RarityCommon,
		Requirement: models.ReqReviewsTotal, Threshold: 1,
		RewardXP: 10, IsActive: true,
	})

	if err := eng.missions.OnReviewCreated(ReviewEvent{ReviewID: "r1", UserID: "u1"}, time.Now()); err != nil {
		t.Fatalf("review: %v", err)
	}

	awarded, err := eng.badges.ListForUser("u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(awarded) != 1 || awarded[0].BadgeID != badge.ID {
		t.Fatalf("awarded = %v, want the badge once", awarded)
	}

	// A second qualifying event re-evaluates but must not re-award.
	if err := eng.missions.OnReviewCreated(ReviewEvent{ReviewID: "r2", UserID: "u1"}, time.Now()); err != nil {
		t.Fatalf("review 2: %v", err)
	}
	awarded, _ = eng.badges.ListForUser("u1")
	if len(awarded) != 1 {
		t.Errorf("badges after re-evaluation = %d, want 1", len(awarded))
	}
	if got := eng.notifier.count(NotifyBadgeAwarded); got != 1 {
		t.Errorf("badge notifications = %d, want 1", got)
	}
	if got := eng.store.ledgerCount(models.SourceBadgeReward); got != 1 {
		t.Errorf("badge reward rows = %d, want 1", got)
	}
}

func TestBadgeBelowThresholdNotAwarded(t *testing.T) {
	eng := newTestEngine()
	eng.store.addBadge(models.Badge{
		Code: "REVIEWS_25", Name: "Voice of the Street",
		Category: models.BadgeCategoryReviewer, Rarity: models.RarityEpic,
		Requirement: models.ReqReviewsTotal, Threshold: 25,
		RewardXP: 200, IsActive: true,
	})

	if err := eng.missions.OnReviewCreated(ReviewEvent{ReviewID: "r1", UserID: "u1"}, time.Now()); err != nil {
		t.Fatalf("review: %v", err)
	}
	awarded, _ := eng.badges.ListForUser("u1")
	if len(awarded) != 0 {
		t.Errorf("awarded = %v, want none below threshold", awarded)
	}
}

func TestInactiveBadgeOnlyAwardableDirectly(t *testing.T) {
	eng := newTestEngine()
	badge := eng.store.addBadge(models.Badge{
		Code: "CITY_STORYTELLER", Name: "City Storyteller",
		Category: models.BadgeCategoryMilestone, Rarity: models.RarityEpic,
		Requirement: models.ReqReviewsTotal, Threshold: 1,
		RewardXP: 50, IsActive: false,
	})

	// Qualifying event, but the badge is out of automatic evaluation.
	if err := eng.missions.OnReviewCreated(ReviewEvent{ReviewID: "r1", UserID: "u1"}, time.Now()); err != nil {
		t.Fatalf("review: %v", err)
	}
	awarded, _ := eng.badges.ListForUser("u1")
	if len(awarded) != 0 {
		t.Fatalf("inactive badge must not auto-award, got %v", awarded)
	}

	won, err := eng.badges.AwardByID("u1", badge.ID)
	if err != nil {
		t.Fatalf("award by id: %v", err)
	}
	if !won {
		t.Error("direct award should win")
	}
	won, err = eng.badges.AwardByID("u1", badge.ID)
	if err != nil {
		t.Fatalf("repeat award: %v", err)
	}
	if won {
		t.Error("repeat direct award must be a no-op")
	}
}

func TestStreakBadge(t *testing.T) {
	eng := newTestEngine()
	eng.store.addBadge(models.Badge{
		Code: "STREAK_7", Name: "Seven Nights",
		Category: models.BadgeCategoryMilestone, Rarity: models.RarityRare,
		Requirement: models.ReqCurrentStreakDays, Threshold: 7,
		RewardXP: 70, IsActive: true,
	})

	if _, err := eng.store.MutatePoints("u1", func(p *models.UserPoints) error {
		p.CurrentStreakDays = 7
		return nil
	}); err != nil {
		t.Fatalf("mutate: %v", err)
	}

	ids, err := eng.badges.Evaluate("u1", models.TriggerCheckIn)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(ids) != 1 {
		t.Errorf("newly awarded = %v, want one badge", ids)
	}
}

func TestZoneWeekBadgeNotAutoEvaluated(t *testing.T) {
	eng := newTestEngine()
	// distinct_zones_week is a mission counter; no trigger routes it
	// into badge evaluation, even with a trivially met threshold.
	eng.store.addBadge(models.Badge{
		Code: "ZONE_HOPPER", Name: "Zone Hopper",
		Category: models.BadgeCategoryExplorer, Rarity: models.RarityRare,
		Requirement: models.ReqDistinctZonesWeek, Threshold: 0,
		RewardXP: 100, IsActive: true,
	})

	ids, err := eng.badges.Evaluate("u1", models.TriggerCheckIn)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("awarded = %v, want none for a mission-only kind", ids)
	}
}

func TestEvaluateValidation(t *testing.T) {
	eng := newTestEngine()
	if _, err := eng.badges.Evaluate("", models.TriggerCheckIn); !isValidationErr(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
