package server

import (
	"time"

	"clinic-portal/types"

	"github.com/gofiber/fiber/v2"
)

var startedAt = time.Now()

// Health reports process liveness and uptime.
func Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "ok",
		Data: fiber.Map{
			"uptime_seconds": int(time.Since(startedAt).Seconds()),
		},
	})
}
