// Package dbtest provides throwaway in-memory databases for tests.
package dbtest

import (
	"fmt"
	"strings"
	"testing"

	"academy/database"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// New returns a migrated sqlite database private to t.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)

	db, err := database.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.Logger = logger.Default.LogMode(logger.Silent)

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}
