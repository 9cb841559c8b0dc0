// Package testutil provides database helpers shared by store tests. Tests
// run against in-memory SQLite; the JSON and UUID column types the models
// declare degrade to TEXT there, which the stores never notice.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory SQLite database. Each call returns an
// isolated database, so parallel tests cannot see each other's rows.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open test database")

	return db
}

// AutoMigrate creates the tables for the given models.
func AutoMigrate(t *testing.T, db *gorm.DB, models ...interface{}) {
	t.Helper()
	require.NoError(t, db.AutoMigrate(models...), "migrate test database")
}
