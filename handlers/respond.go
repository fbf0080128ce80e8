package handlers

import (
	"errors"

	"venue-guide-system/services"

	"github.com/gofiber/fiber/v2"
)

// errStatus maps service error kinds onto HTTP statuses; anything
// unrecognized is a 500.
func errStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error, msg string) error {
	return c.Status(errStatus(err)).JSON(fiber.Map{
		"error": msg,
		"cause": err.Error(),
	})
}
