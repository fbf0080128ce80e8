// handlers/progression_routes.go
package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"venue-guide-system/middleware"
	"venue-guide-system/models"
	"venue-guide-system/services"

	"github.com/gofiber/fiber/v2"
)

// CatalogSeeder re-applies the default mission and badge catalogs.
type CatalogSeeder interface {
	SeedCatalog() error
}

// SetupProgressionRoutes wires the user-facing progression surface:
// progress summary, mission board, badges, ledger history, check-ins
// and the live progress stream, plus the admin XP endpoints.
func SetupProgressionRoutes(
	app *fiber.App,
	xpService *services.XPService,
	missionService *services.MissionService,
	badgeService *services.BadgeService,
	checkInService *services.CheckInService,
	authClient *services.AuthServiceClient,
	seeder CatalogSeeder,
) {
	secured := app.Group("/s/user", middleware.UserContextMiddleware())

	secured.Get("/progress", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		p, err := xpService.Progress(userID)
		if err != nil {
			return fail(c, err, "failed to load progress")
		}

		nextLevelXP := models.XPForNextLevel(p.CurrentLevel)
		return c.JSON(fiber.Map{
			"user_id":             p.UserID,
			"total_xp":            p.TotalXP,
			"monthly_xp":          p.MonthlyXP,
			"level":               p.CurrentLevel,
			"next_level_xp":       nextLevelXP,
			"xp_to_next_level":    nextLevelXP - p.TotalXP,
			"current_streak_days": p.CurrentStreakDays,
			"longest_streak_days": p.LongestStreakDays,
			"last_activity_date":  p.LastActivityDate,
		})
	})

	secured.Get("/progress/history", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		page, _ := strconv.Atoi(c.Query("page", "1"))
		size, _ := strconv.Atoi(c.Query("size", "20"))

		entries, total, err := xpService.History(userID, page, size)
		if err != nil {
			return fail(c, err, "failed to load history")
		}
		return c.JSON(fiber.Map{
			"entries": entries,
			"total":   total,
			"page":    page,
			"size":    size,
		})
	})

	secured.Get("/missions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		board, err := missionService.MissionBoard(userID, time.Now())
		if err != nil {
			return fail(c, err, "failed to load missions")
		}
		return c.JSON(fiber.Map{"missions": board})
	})

	secured.Get("/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		userBadges, err := badgeService.ListForUser(userID)
		if err != nil {
			return fail(c, err, "failed to load badges")
		}

		response := make([]fiber.Map, 0, len(userBadges))
		for _, ub := range userBadges {
			b, err := badgeService.Badges.GetBadge(ub.BadgeID)
			if err != nil {
				log.Printf("⚠️ badge detail lookup failed: %s: %v", ub.BadgeID, err)
				continue
			}
			response = append(response, fiber.Map{
				"id":          ub.ID,
				"badge_id":    b.ID,
				"code":        b.Code,
				"name":        b.Name,
				"description": b.Description,
				"category":    b.Category,
				"rarity":      b.Rarity,
				"awarded_at":  ub.AwardedAt,
			})
		}
		return c.JSON(response)
	})

	secured.Get("/checkins", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))

		rows, err := checkInService.Recent(userID, limit)
		if err != nil {
			return fail(c, err, "failed to load check-ins")
		}
		return c.JSON(fiber.Map{"checkins": rows})
	})

	secured.Post("/check-in", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		type Req struct {
			EstablishmentID string  `json:"establishment_id"`
			Latitude        float64 `json:"latitude"`
			Longitude       float64 `json:"longitude"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		ci, err := checkInService.Submit(userID, req.EstablishmentID, req.Latitude, req.Longitude)
		if err != nil {
			return fail(c, err, "check-in rejected")
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"id":              ci.ID,
			"verified":        ci.Verified,
			"distance_meters": ci.DistanceMeters,
			"checkin_day":     ci.CheckinDay,
			"zone":            ci.Zone,
		})
	})

	// EventSource cannot set headers, so the stream authenticates via
	// query params against the auth service instead of the gateway.
	if authClient != nil {
		app.Get("/s/user/progress/stream", middleware.SSEAuthMiddleware(authClient), streamProgressSSE(xpService))
	}

	// Admin endpoints
	adminGroup := app.Group("/s/admin", middleware.UserContextMiddleware(), middleware.RequireRole("admin"))

	adminGroup.Post("/xp/grant", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
			XP     int64  `json:"xp"`
			Reason string `json:"reason"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		granter := c.Locals("user_id").(string)
		after, err := xpService.Award(req.UserID, req.XP, models.SourceAdminGrant, "admin", granter, req.Reason)
		if err != nil {
			return fail(c, err, "XP grant failed")
		}
		return c.JSON(fiber.Map{
			"message":  "XP granted successfully",
			"user_id":  req.UserID,
			"xp":       req.XP,
			"total_xp": after.TotalXP,
			"level":    after.CurrentLevel,
		})
	})

	adminGroup.Post("/xp/reconcile", func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		drift, err := xpService.Reconcile(req.UserID)
		if err != nil {
			return fail(c, err, "reconcile failed")
		}
		return c.JSON(fiber.Map{
			"user_id": req.UserID,
			"drift":   drift,
		})
	})

	adminGroup.Post("/catalog/seed", func(c *fiber.Ctx) error {
		if err := seeder.SeedCatalog(); err != nil {
			return fail(c, err, "catalog seed failed")
		}
		return c.JSON(fiber.Map{"message": "catalog seeded"})
	})
}

// streamProgressSSE polls the ledger and pushes new transactions to the
// client as they land.
func streamProgressSSE(xpService *services.XPService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		c.Set("Content-Type", "text/event-stream")
		c.Set("Cache-Control", "no-cache")
		c.Set("Connection", "keep-alive")
		c.Set("X-Accel-Buffering", "no") // nginx

		c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()

			// Tuple cursor: a timestamp alone would drop rows landing
			// with the same created_at after a poll.
			cursor := time.Now()
			cursorID := ""

			// Initial keepalive (comment event)
			w.WriteString(":\n\n")
			if err := w.Flush(); err != nil {
				return
			}

			for {
				select {
				case <-ticker.C:
					rows, err := xpService.Points.LedgerSince(userID, cursor, cursorID)
					if err != nil {
						log.Printf("SSE ledger query error for user %s: %v", userID, err)
						continue
					}
					if len(rows) == 0 {
						continue
					}
					last := rows[len(rows)-1]
					cursor, cursorID = last.CreatedAt, last.ID

					for _, r := range rows {
						payload, _ := json.Marshal(r)
						fmt.Fprintf(w, "event: xp\ndata: %s\n\n", payload)
					}
					if err := w.Flush(); err != nil {
						// Client disconnected
						return
					}

				case <-c.Context().Done():
					return
				}
			}
		})

		return nil
	}
}
