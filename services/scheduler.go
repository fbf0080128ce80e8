// services/scheduler.go
package services

import (
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartResetScheduler runs the period-boundary jobs in the reference
// timezone: daily and weekly mission rollovers and the monthly XP
// reset (with ledger archival). Returns the scheduler so main can shut
// it down.
func StartResetScheduler(missions *MissionService, xp *XPService) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithLocation(Location))
	if err != nil {
		return nil, err
	}

	// Midnight every day: daily mission rollover
	if _, err := sched.NewJob(
		gocron.CronJob("0 0 * * *", false),
		gocron.NewTask(func() {
			if err := missions.ResetDailyMissions(time.Now()); err != nil {
				log.Printf("[Scheduler] daily mission reset failed: %v", err)
			}
		}),
	); err != nil {
		return nil, err
	}

	// Monday midnight: weekly mission rollover
	if _, err := sched.NewJob(
		gocron.CronJob("0 0 * * 1", false),
		gocron.NewTask(func() {
			if err := missions.ResetWeeklyMissions(time.Now()); err != nil {
				log.Printf("[Scheduler] weekly mission reset failed: %v", err)
			}
		}),
	); err != nil {
		return nil, err
	}

	// 1st of the month, midnight: archive the closed month and zero
	// the monthly counters
	if _, err := sched.NewJob(
		gocron.CronJob("0 0 1 * *", false),
		gocron.NewTask(func() {
			if err := xp.ResetMonthlyXP(time.Now()); err != nil {
				log.Printf("[Scheduler] monthly XP reset failed: %v", err)
			}
		}),
	); err != nil {
		return nil, err
	}

	sched.Start()
	log.Printf("⏰ Reset scheduler started (tz=%s)", Location)
	return sched, nil
}
