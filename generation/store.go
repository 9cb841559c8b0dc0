package generation

import (
	"context"

	"github.com/google/uuid"
)

// Store defines the interface for test suite persistence.
type Store interface {
	// Create creates a new suite record.
	Create(ctx context.Context, suite *Suite) error

	// GetByID retrieves a suite by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*Suite, error)

	// GetLatestBySession retrieves the most recently created suite for a session.
	GetLatestBySession(ctx context.Context, sessionID string) (*Suite, error)

	// ListBySession retrieves all suites for a session, newest first.
	ListBySession(ctx context.Context, sessionID string) ([]*Suite, error)

	// Update updates a suite with the given setters.
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error

	// Delete deletes a suite by its ID.
	Delete(ctx context.Context, id uuid.UUID) error
}

// UpdateSetter is a function that updates a suite field.
type UpdateSetter func(*Suite) error
