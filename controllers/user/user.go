package user

import (
	"fmt"

	"clinic-portal/logger"
	"clinic-portal/storage"
	"clinic-portal/types"
	"clinic-portal/utils"

	"github.com/gofiber/fiber/v2"
)

// Controller serves user profile lookups.
type Controller struct {
	Store storage.Store
}

func NewUserController(store storage.Store) *Controller {
	return &Controller{Store: store}
}

// Profile returns the authenticated user's record. For patients the
// response includes the computed age.
func (uc *Controller) Profile(c *fiber.Ctx) error {
	uid := utils.ActorUuid(c)
	if uid == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(types.ApiResponse{
			Status:  fiber.StatusUnauthorized,
			Message: "Session expired. Login again.",
		})
	}

	u, err := uc.Store.UserByUuid(uid)
	if err != nil {
		logger.Error("Failed to load user profile", err)
		return c.Status(fiber.StatusNotFound).JSON(types.ApiResponse{
			Status:  fiber.StatusNotFound,
			Message: "User not found",
		})
	}

	data := fiber.Map{
		"user": u,
	}
	if u.DateOfBirth != nil {
		years, months, days := utils.CalculateAge(*u.DateOfBirth)
		data["age"] = fmt.Sprintf("%dy %dm %dd", years, months, days)
	}

	return c.Status(fiber.StatusOK).JSON(types.ApiResponse{
		Status:  fiber.StatusOK,
		Message: "Profile retrieved",
		Data:    data,
	})
}
