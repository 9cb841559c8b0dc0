package executor

import (
	"context"

	"github.com/google/uuid"
)

type Store interface {
	Create(ctx context.Context, execution *Execution) error
	GetByID(ctx context.Context, id uuid.UUID) (*Execution, error)
	GetLatestBySession(ctx context.Context, sessionID string) (*Execution, error)
	ListBySession(ctx context.Context, sessionID string) ([]*Execution, error)
	Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error
	Start(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, summary Summary, results []Result) error
	Fail(ctx context.Context, id uuid.UUID, reason string) error
}

type UpdateSetter func(*Execution) error
