// handlers/events_routes.go
package handlers

import (
	"time"

	"venue-guide-system/middleware"
	"venue-guide-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupEventRoutes wires the ingestion endpoints sibling services call
// through the gateway when a user acts (review, vote, follow, photo).
// Redelivered events are dropped inside the service layer, so callers
// may retry freely.
func SetupEventRoutes(app *fiber.App, missionService *services.MissionService) {
	events := app.Group("/s/events", middleware.UserContextMiddleware())

	events.Post("/review", func(c *fiber.Ctx) error {
		type Req struct {
			ReviewID        string `json:"review_id"`
			UserID          string `json:"user_id"`
			EstablishmentID string `json:"establishment_id"`
			Rating          int    `json:"rating"`
			HasPhoto        bool   `json:"has_photo"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		err := missionService.OnReviewCreated(services.ReviewEvent{
			ReviewID:        req.ReviewID,
			UserID:          req.UserID,
			EstablishmentID: req.EstablishmentID,
			Rating:          req.Rating,
			HasPhoto:        req.HasPhoto,
		}, time.Now())
		if err != nil {
			return fail(c, err, "review event rejected")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
	})

	events.Post("/vote", func(c *fiber.Ctx) error {
		type Req struct {
			VoterID  string `json:"voter_id"`
			ReviewID string `json:"review_id"`
			AuthorID string `json:"author_id"`
			Helpful  bool   `json:"helpful"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		err := missionService.OnVoteCast(services.VoteEvent{
			VoterID:  req.VoterID,
			ReviewID: req.ReviewID,
			AuthorID: req.AuthorID,
			Helpful:  req.Helpful,
		}, time.Now())
		if err != nil {
			return fail(c, err, "vote event rejected")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
	})

	events.Post("/follow", func(c *fiber.Ctx) error {
		type Req struct {
			FollowerID string `json:"follower_id"`
			FollowedID string `json:"followed_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		err := missionService.OnFollowAction(services.FollowEvent{
			FollowerID: req.FollowerID,
			FollowedID: req.FollowedID,
		}, time.Now())
		if err != nil {
			return fail(c, err, "follow event rejected")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
	})

	events.Post("/photo", func(c *fiber.Ctx) error {
		type Req struct {
			UserID   string `json:"user_id"`
			ReviewID string `json:"review_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid JSON",
				"cause": err.Error(),
			})
		}

		err := missionService.OnPhotoUploaded(services.PhotoEvent{
			UserID:   req.UserID,
			ReviewID: req.ReviewID,
		}, time.Now())
		if err != nil {
			return fail(c, err, "photo event rejected")
		}
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted"})
	})
}
