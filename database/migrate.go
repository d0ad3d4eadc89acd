// database/migrate.go - Schema setup
package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"userachievements/models"
)

// RunMigrations creates or updates the three tables and their indexes
func RunMigrations(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")

	if err := db.AutoMigrate(
		&models.User{},
		&models.Achievement{},
		&models.UserAchievement{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return err
	}

	log.Info("migrations completed")
	return nil
}

// createIndexes adds indexes the model tags do not express
func createIndexes(db *gorm.DB) error {
	statements := []string{
		// streak window scans filter by time and group by user
		"CREATE INDEX IF NOT EXISTS idx_users_achievements_awarded_user ON users_achievements(awarded_at, user_id)",
	}

	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
