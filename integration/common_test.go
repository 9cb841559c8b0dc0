package integration

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gunitk/testforge/issuetracker"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/testutil"
)

var testKey = DeriveKey("store-test-passphrase")

func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Integration{}, &IssueLink{})
	return db, NewMySQLStore(db, logger.NewTestLogger())
}

func createTestIntegration(t *testing.T, name string) *Integration {
	t.Helper()
	encrypted, err := EncryptCredentials(testKey, map[string]string{
		"token": "ghp_test",
		"owner": "acme",
		"repo":  "webapp",
	})
	require.NoError(t, err)

	return &Integration{
		Name:                 name,
		Provider:             issuetracker.ProviderGitHub,
		EncryptedCredentials: encrypted,
		IsActive:             true,
	}
}
