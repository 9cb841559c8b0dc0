package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// CreateFixture inserts one row, running the model's gorm hooks.
func CreateFixture(t *testing.T, db *gorm.DB, model interface{}) {
	t.Helper()
	require.NoError(t, db.Create(model).Error, "create fixture")
}

// CreateFixtures inserts rows one at a time in argument order, so
// creation timestamps are monotonic for ordering assertions.
func CreateFixtures(t *testing.T, db *gorm.DB, models ...interface{}) {
	t.Helper()
	for _, model := range models {
		CreateFixture(t, db, model)
	}
}
