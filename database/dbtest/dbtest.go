// Package dbtest opens throwaway in-memory stores for tests.
package dbtest

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"userachievements/config"
	"userachievements/database"
)

// New returns a migrated, empty in-memory SQLite store that is closed when
// the test ends. Each call gets its own database.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := config.DatabaseConfig{
		Driver:       config.DriverSQLite,
		URL:          "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=on",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
		QueryTimeout: 5 * time.Second,
		LogLevel:     "silent",
	}

	db, err := database.Open(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})

	if err := database.RunMigrations(db, zap.NewNop()); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	return db
}
