// handlers/handlers.go - Route table and shared error rendering
package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"userachievements/services"
	"userachievements/utils"
)

// Pinger reports whether the store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	achievements *services.AchievementService
	analytics    *services.AnalyticsService
	store        Pinger
	logger       *zap.Logger
}

func New(achievements *services.AchievementService, analytics *services.AnalyticsService, store Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		achievements: achievements,
		analytics:    analytics,
		store:        store,
		logger:       logger,
	}
}

// Register mounts every route on router
func (h *Handler) Register(router fiber.Router) {
	// Users
	router.Get("/users/:id/achievements", h.GetUserAchievements)
	router.Get("/users/:id", h.GetUser)
	router.Post("/users/create", h.CreateUser)

	// Achievements
	router.Get("/achievements", h.GetAchievements)
	router.Post("/achievements/create", h.CreateAchievement)
	router.Post("/set_achievement", h.SetAchievement)

	// Analytics
	router.Get("/users_with_max_achievements", h.GetUsersWithMaxAchievements)
	router.Get("/users_with_max_scores", h.GetUsersWithMaxScores)
	router.Get("/users_with_max_difference", h.GetUsersWithMaxDifference)
	router.Get("/users_with_min_difference", h.GetUsersWithMinDifference)
	router.Get("/users_with_7days_achievements", h.GetUsersWithSevenDayStreak)

	router.Get("/health", h.Health)
}

// fail renders a service error with its status; anything else is a 500
func (h *Handler) fail(c *fiber.Ctx, err error) error {
	var se *services.ServiceError
	if !errors.As(err, &se) {
		se = services.NewInternalError("Internal Server Error", err)
	}

	status := se.GetStatusCode()
	if status >= fiber.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
	}

	return utils.JSONError(c, status, se.Message)
}

// ErrorHandler renders errors that escape handlers (unknown routes, body
// limits, panics recovered by middleware)
func ErrorHandler(logger *zap.Logger, production bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			message = fe.Message
		}

		if code >= fiber.StatusInternalServerError {
			logger.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
			// Don't expose internal errors in production
			if production {
				message = "An error occurred. Please try again later."
			}
		}

		return utils.JSONError(c, code, message)
	}
}
