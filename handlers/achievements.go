package handlers

import (
	"github.com/gofiber/fiber/v2"

	"userachievements/models"
	"userachievements/services"
	"userachievements/utils"
)

// GetAchievements returns all achievements
func (h *Handler) GetAchievements(c *fiber.Ctx) error {
	achievements, err := h.achievements.ListAchievements(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, achievements)
}

// CreateAchievement creates a new achievement
func (h *Handler) CreateAchievement(c *fiber.Ctx) error {
	var req models.CreateAchievementRequest
	if err := utils.ParseRequest(c, &req); err != nil {
		return h.fail(c, services.NewValidationError("Invalid request body", err))
	}

	achievement, err := h.achievements.CreateAchievement(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, achievement)
}

// SetAchievement grants an achievement to a user; 409 if already held
func (h *Handler) SetAchievement(c *fiber.Ctx) error {
	var req models.SetAchievementRequest
	if err := utils.ParseRequest(c, &req); err != nil {
		return h.fail(c, services.NewValidationError("Invalid request body", err))
	}

	award, err := h.achievements.GrantAward(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, award)
}
