package handlers

import (
	"github.com/gofiber/fiber/v2"

	"userachievements/models"
	"userachievements/services"
	"userachievements/utils"
)

// GetUser returns a single user
// GET /users/{id}
func (h *Handler) GetUser(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	user, err := h.achievements.GetUser(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, user)
}

// CreateUser registers a user with a language of ru or en
// POST /users/create
func (h *Handler) CreateUser(c *fiber.Ctx) error {
	var req models.CreateUserRequest
	if err := utils.ParseRequest(c, &req); err != nil {
		return h.fail(c, services.NewValidationError("Invalid request body", err))
	}

	user, err := h.achievements.CreateUser(c.UserContext(), &req)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSON(c, fiber.StatusOK, user)
}

// GetUserAchievements returns the user's awards in the user's language
// GET /users/{id}/achievements
func (h *Handler) GetUserAchievements(c *fiber.Ctx) error {
	id, ok := utils.ParamID(c, "id")
	if !ok {
		return utils.JSONError(c, fiber.StatusBadRequest, "Invalid user id")
	}

	awards, err := h.achievements.UserAchievements(c.UserContext(), id)
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{
		"user_id":      id,
		"achievements": awards,
		"total":        len(awards),
	})
}
