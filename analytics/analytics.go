// Package analytics derives leaderboards and streaks from award data.
//
// Every function here is pure: callers fetch rows from the store and pass
// them in, so results depend only on the snapshot given. Results list every
// tied user in ascending user id order.
package analytics

import (
	"errors"
	"slices"
	"time"
)

// ErrNoRows is returned when no user qualifies, which includes the case of
// an empty award table.
var ErrNoRows = errors.New("analytics: no qualifying users")

// UserTotal is the per-user aggregate over that user's awards.
// Users without awards never produce a UserTotal.
type UserTotal struct {
	UserID           uint
	Username         string
	AchievementCount int64
	TotalScore       int64
}

// CatalogSnapshot is the catalog score total and the per-user totals read
// together, so every difference is taken against the same catalog.
// CatalogTotal is zero when Totals is empty.
type CatalogSnapshot struct {
	CatalogTotal int64
	Totals       []UserTotal
}

// AwardEvent is a single award timestamp attributed to a user
type AwardEvent struct {
	UserID    uint
	Username  string
	AwardedAt time.Time
}

type CountEntry struct {
	UserID           uint   `json:"user_id"`
	Username         string `json:"username"`
	AchievementCount int64  `json:"achievement_count"`
}

type ScoreEntry struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	TotalScore int64  `json:"total_score"`
}

type DifferenceEntry struct {
	UserID     uint   `json:"user_id"`
	Username   string `json:"username"`
	Difference int64  `json:"difference"`
}

type StreakEntry struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
}

// StreakDays is the length of the streak window in calendar days
const StreakDays = 7

// MaxAchievementCount returns the users holding the most achievements
func MaxAchievementCount(totals []UserTotal) ([]CountEntry, error) {
	best := extremes(totals, func(t UserTotal) int64 { return t.AchievementCount }, greater)
	if len(best) == 0 {
		return nil, ErrNoRows
	}

	entries := make([]CountEntry, len(best))
	for i, t := range best {
		entries[i] = CountEntry{UserID: t.UserID, Username: t.Username, AchievementCount: t.AchievementCount}
	}
	return entries, nil
}

// MaxTotalScore returns the users with the highest summed score
func MaxTotalScore(totals []UserTotal) ([]ScoreEntry, error) {
	best := extremes(totals, func(t UserTotal) int64 { return t.TotalScore }, greater)
	if len(best) == 0 {
		return nil, ErrNoRows
	}

	entries := make([]ScoreEntry, len(best))
	for i, t := range best {
		entries[i] = ScoreEntry{UserID: t.UserID, Username: t.Username, TotalScore: t.TotalScore}
	}
	return entries, nil
}

// MaxDifference returns the users furthest from catalogTotal, the score
// obtainable by holding every achievement.
func MaxDifference(totals []UserTotal, catalogTotal int64) ([]DifferenceEntry, error) {
	return difference(totals, catalogTotal, greater)
}

// MinDifference returns the users closest to catalogTotal
func MinDifference(totals []UserTotal, catalogTotal int64) ([]DifferenceEntry, error) {
	return difference(totals, catalogTotal, less)
}

func difference(totals []UserTotal, catalogTotal int64, better func(a, b int64) bool) ([]DifferenceEntry, error) {
	diff := func(t UserTotal) int64 { return catalogTotal - t.TotalScore }

	best := extremes(totals, diff, better)
	if len(best) == 0 {
		return nil, ErrNoRows
	}

	entries := make([]DifferenceEntry, len(best))
	for i, t := range best {
		entries[i] = DifferenceEntry{UserID: t.UserID, Username: t.Username, Difference: diff(t)}
	}
	return entries, nil
}

// StreakWindow returns the half-open interval [from, to) covering the
// StreakDays calendar days that end with the day containing now, in loc.
func StreakWindow(now time.Time, loc *time.Location) (from, to time.Time) {
	local := now.In(loc)
	y, m, d := local.Date()
	from = time.Date(y, m, d-(StreakDays-1), 0, 0, 0, 0, loc)
	to = time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return from, to
}

// SevenDayStreak returns the users with at least one award on each of the
// StreakDays calendar days ending today. Timestamps are truncated to dates
// in loc; events outside the window are ignored.
func SevenDayStreak(events []AwardEvent, now time.Time, loc *time.Location) ([]StreakEntry, error) {
	from, to := StreakWindow(now, loc)

	type userDays struct {
		username string
		days     map[time.Time]struct{}
	}
	byUser := make(map[uint]*userDays)

	for _, ev := range events {
		if ev.AwardedAt.Before(from) || !ev.AwardedAt.Before(to) {
			continue
		}
		u, ok := byUser[ev.UserID]
		if !ok {
			u = &userDays{username: ev.Username, days: make(map[time.Time]struct{}, StreakDays)}
			byUser[ev.UserID] = u
		}
		local := ev.AwardedAt.In(loc)
		y, m, d := local.Date()
		u.days[time.Date(y, m, d, 0, 0, 0, 0, loc)] = struct{}{}
	}

	var entries []StreakEntry
	for id, u := range byUser {
		if len(u.days) == StreakDays {
			entries = append(entries, StreakEntry{UserID: id, Username: u.username})
		}
	}
	if len(entries) == 0 {
		return nil, ErrNoRows
	}

	slices.SortFunc(entries, func(a, b StreakEntry) int { return compareIDs(a.UserID, b.UserID) })
	return entries, nil
}

// extremes keeps every total whose key is not beaten by any other under
// better, sorted by user id.
func extremes(totals []UserTotal, key func(UserTotal) int64, better func(a, b int64) bool) []UserTotal {
	if len(totals) == 0 {
		return nil
	}

	target := key(totals[0])
	for _, t := range totals[1:] {
		if k := key(t); better(k, target) {
			target = k
		}
	}

	var out []UserTotal
	for _, t := range totals {
		if key(t) == target {
			out = append(out, t)
		}
	}

	slices.SortFunc(out, func(a, b UserTotal) int { return compareIDs(a.UserID, b.UserID) })
	return out
}

func greater(a, b int64) bool { return a > b }
func less(a, b int64) bool    { return a < b }

func compareIDs(a, b uint) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
