// handlers/leaderboard.go
package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"userachievements/utils"
)

// GetUsersWithMaxAchievements returns every user tied for the most achievements
// GET /users_with_max_achievements
func (h *Handler) GetUsersWithMaxAchievements(c *fiber.Ctx) error {
	users, err := h.analytics.UsersWithMaxAchievements(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{"users": users})
}

// GetUsersWithMaxScores returns every user tied for the highest total score
// GET /users_with_max_scores
func (h *Handler) GetUsersWithMaxScores(c *fiber.Ctx) error {
	users, err := h.analytics.UsersWithMaxScores(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{"users": users})
}

// GetUsersWithMaxDifference returns the users with the most points left to collect
// GET /users_with_max_difference
func (h *Handler) GetUsersWithMaxDifference(c *fiber.Ctx) error {
	result, err := h.analytics.UsersWithMaxDifference(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{
		"catalog_total": result.CatalogTotal,
		"users":         result.Users,
	})
}

// GetUsersWithMinDifference returns the users closest to the full catalog score
// GET /users_with_min_difference
func (h *Handler) GetUsersWithMinDifference(c *fiber.Ctx) error {
	result, err := h.analytics.UsersWithMinDifference(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{
		"catalog_total": result.CatalogTotal,
		"users":         result.Users,
	})
}

// GetUsersWithSevenDayStreak returns users awarded on each of the last 7 days
// GET /users_with_7days_achievements
func (h *Handler) GetUsersWithSevenDayStreak(c *fiber.Ctx) error {
	users, err := h.analytics.UsersWithSevenDayStreak(c.UserContext())
	if err != nil {
		return h.fail(c, err)
	}
	return utils.JSONSuccess(c, fiber.Map{"users": users})
}

// Health check endpoint
func (h *Handler) Health(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		return utils.JSON(c, fiber.StatusServiceUnavailable, fiber.Map{
			"status":    "unhealthy",
			"timestamp": time.Now().Unix(),
		})
	}

	return utils.JSON(c, fiber.StatusOK, fiber.Map{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}
