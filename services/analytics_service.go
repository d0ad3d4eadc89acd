package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"userachievements/analytics"
)

// AnalyticsService runs the read-only leaderboard and streak queries.
// Each call reads its own snapshot of the store.
type AnalyticsService struct {
	store    AnalyticsStore
	location *time.Location
	now      Clock
	logger   *zap.Logger
}

// DifferenceResult carries the catalog total alongside the selected users
type DifferenceResult struct {
	CatalogTotal int64                       `json:"catalog_total"`
	Users        []analytics.DifferenceEntry `json:"users"`
}

func NewAnalyticsService(store AnalyticsStore, location *time.Location, now Clock, logger *zap.Logger) *AnalyticsService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &AnalyticsService{store: store, location: location, now: now, logger: logger}
}

func (s *AnalyticsService) UsersWithMaxAchievements(ctx context.Context) ([]analytics.CountEntry, error) {
	totals, err := s.store.UserTotals(ctx)
	if err != nil {
		return nil, storeError(err, "Users is not found")
	}

	entries, err := analytics.MaxAchievementCount(totals)
	if err != nil {
		return nil, storeError(err, "Users is not found")
	}
	return entries, nil
}

func (s *AnalyticsService) UsersWithMaxScores(ctx context.Context) ([]analytics.ScoreEntry, error) {
	totals, err := s.store.UserTotals(ctx)
	if err != nil {
		return nil, storeError(err, "Users is not found")
	}

	entries, err := analytics.MaxTotalScore(totals)
	if err != nil {
		return nil, storeError(err, "Users is not found")
	}
	return entries, nil
}

func (s *AnalyticsService) UsersWithMaxDifference(ctx context.Context) (*DifferenceResult, error) {
	return s.difference(ctx, analytics.MaxDifference)
}

func (s *AnalyticsService) UsersWithMinDifference(ctx context.Context) (*DifferenceResult, error) {
	return s.difference(ctx, analytics.MinDifference)
}

func (s *AnalyticsService) difference(ctx context.Context, pick func([]analytics.UserTotal, int64) ([]analytics.DifferenceEntry, error)) (*DifferenceResult, error) {
	snap, err := s.store.CatalogSnapshot(ctx)
	if err != nil {
		return nil, storeError(err, "Users is not found")
	}

	entries, err := pick(snap.Totals, snap.CatalogTotal)
	if err != nil {
		return nil, storeError(err, "Users is not found")
	}
	return &DifferenceResult{CatalogTotal: snap.CatalogTotal, Users: entries}, nil
}

// UsersWithSevenDayStreak returns users with an award on each of the last
// seven calendar days, today included
func (s *AnalyticsService) UsersWithSevenDayStreak(ctx context.Context) ([]analytics.StreakEntry, error) {
	now := s.now()
	from, to := analytics.StreakWindow(now, s.location)

	events, err := s.store.AwardsBetween(ctx, from, to)
	if err != nil {
		return nil, storeError(err, "Users is not found")
	}

	entries, err := analytics.SevenDayStreak(events, now, s.location)
	if err != nil {
		return nil, storeError(err, "Users is not found")
	}

	s.logger.Debug("streak computed",
		zap.Time("from", from),
		zap.Time("to", to),
		zap.Int("events", len(events)),
		zap.Int("users", len(entries)))
	return entries, nil
}
