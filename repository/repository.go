// repository/repository.go - Typed store access over gorm
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"userachievements/analytics"
	"userachievements/database"
	"userachievements/models"
)

var (
	// ErrNotFound means the requested row does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate means the user already holds the achievement
	ErrDuplicate = errors.New("award already exists")
	// ErrMissingReference means an award pointed at a missing user or achievement
	ErrMissingReference = errors.New("referenced user or achievement does not exist")
	// ErrUnavailable means the store could not answer in time
	ErrUnavailable = errors.New("store unavailable")
)

// AwardFilter narrows ListAwards. Zero values mean no restriction;
// the time range is half-open [From, To).
type AwardFilter struct {
	UserID uint
	From   time.Time
	To     time.Time
}

// Repository reads and writes users, achievements and awards.
// Each call runs on its own handle bounded by the configured timeout.
type Repository struct {
	db      *gorm.DB
	timeout time.Duration
}

func New(db *gorm.DB, timeout time.Duration) *Repository {
	return &Repository{db: db, timeout: timeout}
}

// scoped returns a request-scoped handle; the caller must defer the cancel
func (r *Repository) scoped(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	return r.db.WithContext(ctx), cancel
}

func (r *Repository) GetUser(ctx context.Context, id uint) (*models.User, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		return nil, translate("get user", err)
	}
	return &user, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *models.User) error {
	db, cancel := r.scoped(ctx)
	defer cancel()

	if err := db.Omit(clause.Associations).Create(user).Error; err != nil {
		return translate("create user", err)
	}
	return nil
}

func (r *Repository) GetAchievement(ctx context.Context, id uint) (*models.Achievement, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	var achievement models.Achievement
	if err := db.First(&achievement, id).Error; err != nil {
		return nil, translate("get achievement", err)
	}
	return &achievement, nil
}

func (r *Repository) ListAchievements(ctx context.Context) ([]models.Achievement, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	var achievements []models.Achievement
	if err := db.Order("id").Find(&achievements).Error; err != nil {
		return nil, translate("list achievements", err)
	}
	return achievements, nil
}

func (r *Repository) CreateAchievement(ctx context.Context, achievement *models.Achievement) error {
	db, cancel := r.scoped(ctx)
	defer cancel()

	if err := db.Create(achievement).Error; err != nil {
		return translate("create achievement", err)
	}
	return nil
}

// CountAchievements returns the size of the catalog
func (r *Repository) CountAchievements(ctx context.Context) (int64, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	var count int64
	if err := db.Model(&models.Achievement{}).Count(&count).Error; err != nil {
		return 0, translate("count achievements", err)
	}
	return count, nil
}

// CreateAchievements inserts a catalog in batches of batchSize
func (r *Repository) CreateAchievements(ctx context.Context, achievements []models.Achievement, batchSize int) error {
	if len(achievements) == 0 {
		return nil
	}

	db, cancel := r.scoped(ctx)
	defer cancel()

	if err := db.CreateInBatches(&achievements, batchSize).Error; err != nil {
		return translate("import achievements", err)
	}
	return nil
}

// ListAwards returns awards with their achievement loaded, oldest first
func (r *Repository) ListAwards(ctx context.Context, filter AwardFilter) ([]models.UserAchievement, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	query := db.Preload("Achievement")
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if !filter.From.IsZero() {
		query = query.Where("awarded_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query = query.Where("awarded_at < ?", filter.To.UTC())
	}

	var awards []models.UserAchievement
	if err := query.Order("awarded_at, id").Find(&awards).Error; err != nil {
		return nil, translate("list awards", err)
	}
	return awards, nil
}

// GrantAward inserts a single award. The unique index on
// (user_id, achievement_id) makes concurrent duplicates fail with ErrDuplicate.
func (r *Repository) GrantAward(ctx context.Context, award *models.UserAchievement) error {
	db, cancel := r.scoped(ctx)
	defer cancel()

	if err := db.Omit(clause.Associations).Create(award).Error; err != nil {
		return translate("grant award", err)
	}
	return nil
}

const userTotalsQuery = `
	SELECT
		u.id AS user_id,
		u.username AS username,
		COUNT(ua.id) AS achievement_count,
		COALESCE(SUM(a.scores), 0) AS total_score%s
	FROM users_achievements ua
	JOIN users u ON u.id = ua.user_id
	JOIN achievements a ON a.id = ua.achievement_id
	GROUP BY u.id, u.username
	ORDER BY u.id
`

// UserTotals returns award count and summed score for every user holding
// at least one award
func (r *Repository) UserTotals(ctx context.Context) ([]analytics.UserTotal, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	var totals []analytics.UserTotal
	if err := db.Raw(fmt.Sprintf(userTotalsQuery, "")).Scan(&totals).Error; err != nil {
		return nil, translate("user totals", err)
	}
	return totals, nil
}

type snapshotRow struct {
	UserID           uint
	Username         string
	AchievementCount int64
	TotalScore       int64
	CatalogTotal     int64
}

// CatalogSnapshot reads the per-user totals and the catalog total in a
// single statement, so a concurrent insert cannot land between them
func (r *Repository) CatalogSnapshot(ctx context.Context) (analytics.CatalogSnapshot, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	query := fmt.Sprintf(userTotalsQuery, ",\n\t\t(SELECT COALESCE(SUM(scores), 0) FROM achievements) AS catalog_total")

	var rows []snapshotRow
	if err := db.Raw(query).Scan(&rows).Error; err != nil {
		return analytics.CatalogSnapshot{}, translate("catalog snapshot", err)
	}

	snap := analytics.CatalogSnapshot{Totals: make([]analytics.UserTotal, 0, len(rows))}
	for _, row := range rows {
		snap.CatalogTotal = row.CatalogTotal
		snap.Totals = append(snap.Totals, analytics.UserTotal{
			UserID:           row.UserID,
			Username:         row.Username,
			AchievementCount: row.AchievementCount,
			TotalScore:       row.TotalScore,
		})
	}
	return snap, nil
}

// CatalogTotal sums the score of every achievement in the catalog
func (r *Repository) CatalogTotal(ctx context.Context) (int64, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	var total int64
	if err := db.Model(&models.Achievement{}).Select("COALESCE(SUM(scores), 0)").Scan(&total).Error; err != nil {
		return 0, translate("catalog total", err)
	}
	return total, nil
}

// AwardsBetween returns award timestamps in [from, to) with their owner
func (r *Repository) AwardsBetween(ctx context.Context, from, to time.Time) ([]analytics.AwardEvent, error) {
	db, cancel := r.scoped(ctx)
	defer cancel()

	var events []analytics.AwardEvent
	err := db.Table("users_achievements AS ua").
		Select("ua.user_id AS user_id, u.username AS username, ua.awarded_at AS awarded_at").
		Joins("JOIN users u ON u.id = ua.user_id").
		Where("ua.awarded_at >= ? AND ua.awarded_at < ?", from.UTC(), to.UTC()).
		Order("ua.user_id, ua.awarded_at").
		Scan(&events).Error
	if err != nil {
		return nil, translate("awards between", err)
	}
	return events, nil
}

// Ping checks the store answers within the timeout
func (r *Repository) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := database.Ping(ctx, r.db); err != nil {
		return translate("ping", err)
	}
	return nil
}

// translate maps driver and gorm errors onto the repository sentinels.
// Anything unrecognised is treated as the store being unavailable.
func translate(op string, err error) error {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s: %w", op, ErrDuplicate)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s: %w", op, ErrMissingReference)
	}

	return fmt.Errorf("%s: %w: %w", op, ErrUnavailable, err)
}
