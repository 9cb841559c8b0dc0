package generation

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/provider"
	"github.com/gunitk/testforge/storage"
	"github.com/gunitk/testforge/testutil"
)

// setupTestStore creates a test database and suite store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Suite{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// fakeProvider is a scripted provider.Provider for coordinator tests.
// sendFunc, when set, overrides the fixed response/err pair.
type fakeProvider struct {
	key       string
	family    provider.Family
	available bool
	response  string
	err       error
	sendFunc  func(prompt string) (string, error)
	calls     int
}

func (f *fakeProvider) Key() string { return f.key }

func (f *fakeProvider) Describe() provider.Descriptor {
	return provider.Descriptor{
		Key:    f.key,
		Name:   f.key,
		Family: f.family,
	}
}

func (f *fakeProvider) Available() bool { return f.available }

func (f *fakeProvider) Send(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.sendFunc != nil {
		return f.sendFunc(prompt)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// newTestCoordinator wires a coordinator against sqlite, local artifact
// storage and the given providers.
func newTestCoordinator(t *testing.T, defaultKey string, providers ...provider.Provider) (*Coordinator, Store, storage.BlobStorage) {
	log := logger.NewTestLogger()
	_, store := setupTestStore(t)

	artifacts, err := storage.NewLocalStorage(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create artifact storage: %v", err)
	}

	manager := provider.NewManager(providers, defaultKey, log)
	coordinator := NewCoordinator(manager, NewBuilder(log), store, artifacts, log)

	return coordinator, store, artifacts
}
