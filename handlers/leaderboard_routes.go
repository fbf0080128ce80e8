// handlers/leaderboard_routes.go
package handlers

import (
	"strconv"

	"venue-guide-system/middleware"
	"venue-guide-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupLeaderboardRoutes wires the four ranked boards. All are reads;
// the service clamps the requested size.
func SetupLeaderboardRoutes(app *fiber.App, leaderboardService *services.LeaderboardService) {
	boards := app.Group("/s/leaderboard", middleware.UserContextMiddleware())

	boards.Get("/global", func(c *fiber.Ctx) error {
		top, _ := strconv.Atoi(c.Query("top", "10"))
		board, err := leaderboardService.GlobalTop(top)
		if err != nil {
			return fail(c, err, "failed to load global leaderboard")
		}
		return c.JSON(board)
	})

	boards.Get("/monthly", func(c *fiber.Ctx) error {
		top, _ := strconv.Atoi(c.Query("top", "10"))
		board, err := leaderboardService.MonthlyTop(top)
		if err != nil {
			return fail(c, err, "failed to load monthly leaderboard")
		}
		return c.JSON(board)
	})

	boards.Get("/zone/:zone", func(c *fiber.Ctx) error {
		top, _ := strconv.Atoi(c.Query("top", "10"))
		board, err := leaderboardService.ZoneTop(c.Params("zone"), top)
		if err != nil {
			return fail(c, err, "failed to load zone leaderboard")
		}
		return c.JSON(board)
	})

	boards.Get("/category/:category", func(c *fiber.Ctx) error {
		top, _ := strconv.Atoi(c.Query("top", "10"))
		board, err := leaderboardService.CategoryTop(c.Params("category"), top)
		if err != nil {
			return fail(c, err, "failed to load category leaderboard")
		}
		return c.JSON(board)
	})
}
