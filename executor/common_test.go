package executor

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gorm.io/gorm"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/testutil"
)

var errTest = errors.New("scripted failure")

// setupTestStore creates a test database and execution store for testing.
func setupTestStore(t *testing.T) (*gorm.DB, Store) {
	db := testutil.SetupTestDB(t)
	testutil.AutoMigrate(t, db, &Execution{})

	log := logger.NewTestLogger()
	store := NewMySQLStore(db, log)

	return db, store
}

// fakeDriver scripts driver behavior for engine and service tests. Error
// fields make the matching call fail; the recorded slices capture call
// order.
type fakeDriver struct {
	navigateErr error
	performErr  map[string]error
	viewportErr error
	headers     http.Header
	headersErr  error
	failResets  int

	navigations []string
	performed   []string
	viewports   [][2]int
	resets      int
	closed      bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{headers: http.Header{}}
}

func (d *fakeDriver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.navigateErr != nil {
		return d.navigateErr
	}
	d.navigations = append(d.navigations, url)
	return nil
}

func (d *fakeDriver) Perform(ctx context.Context, step string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	d.performed = append(d.performed, step)
	if err := d.performErr[step]; err != nil {
		return "", err
	}
	return "did: " + step, nil
}

func (d *fakeDriver) SetViewport(ctx context.Context, width, height int) error {
	if d.viewportErr != nil {
		return d.viewportErr
	}
	d.viewports = append(d.viewports, [2]int{width, height})
	return nil
}

func (d *fakeDriver) ResponseHeaders(ctx context.Context, url string) (http.Header, error) {
	if d.headersErr != nil {
		return nil, d.headersErr
	}
	return d.headers, nil
}

func (d *fakeDriver) Reset(ctx context.Context) error {
	d.resets++
	if d.failResets > 0 {
		d.failResets--
		return errTest
	}
	return nil
}

func (d *fakeDriver) Close() error {
	d.closed = true
	return nil
}
