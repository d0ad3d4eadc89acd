package services

import (
	"context"
	"time"

	"userachievements/analytics"
	"userachievements/models"
	"userachievements/repository"
)

// AchievementStore is the part of the repository the catalog, user and
// award operations need
type AchievementStore interface {
	GetUser(ctx context.Context, id uint) (*models.User, error)
	CreateUser(ctx context.Context, user *models.User) error
	GetAchievement(ctx context.Context, id uint) (*models.Achievement, error)
	ListAchievements(ctx context.Context) ([]models.Achievement, error)
	CreateAchievement(ctx context.Context, achievement *models.Achievement) error
	ListAwards(ctx context.Context, filter repository.AwardFilter) ([]models.UserAchievement, error)
	GrantAward(ctx context.Context, award *models.UserAchievement) error
}

// AnalyticsStore supplies the raw aggregates the analytics reducers consume
type AnalyticsStore interface {
	UserTotals(ctx context.Context) ([]analytics.UserTotal, error)
	CatalogSnapshot(ctx context.Context) (analytics.CatalogSnapshot, error)
	AwardsBetween(ctx context.Context, from, to time.Time) ([]analytics.AwardEvent, error)
}

// Clock returns the current time; tests pin it
type Clock func() time.Time
