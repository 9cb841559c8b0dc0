package executor

import (
	"context"
	"errors"
	"net/http"
)

// ErrDriverUnavailable is returned when no browser could be launched for a
// batch. It is the only execution error surfaced per batch; per-case
// failures are recorded in the results instead.
var ErrDriverUnavailable = errors.New("browser driver unavailable")

// Driver abstracts the browser automation backend that replays test steps.
// A driver owns one browser session and is not safe for concurrent use.
type Driver interface {
	// Navigate loads url in the active page and waits for it to load.
	Navigate(ctx context.Context, url string) error

	// Perform interprets one free-text step, executes the closest matching
	// browser action and returns a human-readable observation.
	Perform(ctx context.Context, step string) (string, error)

	// SetViewport resizes the page viewport.
	SetViewport(ctx context.Context, width, height int) error

	// ResponseHeaders fetches url and returns its response headers.
	ResponseHeaders(ctx context.Context, url string) (http.Header, error)

	// Reset returns the driver to a clean page so state from one case
	// cannot leak into the next.
	Reset(ctx context.Context) error

	// Close releases the underlying browser.
	Close() error
}

// DriverFactory builds a fresh Driver for one execution batch.
type DriverFactory func() (Driver, error)
