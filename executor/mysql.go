package executor

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gunitk/testforge/logger"
)

// MySQLStore implements the Store interface using GORM and MySQL.
type MySQLStore struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewMySQLStore creates a new MySQL-backed execution store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create persists a new execution record.
func (s *MySQLStore) Create(ctx context.Context, execution *Execution) error {
	if err := execution.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(execution).Error; err != nil {
		s.logger.Error(ctx, "failed to create execution", map[string]interface{}{
			"error":      err.Error(),
			"session_id": execution.SessionID,
		})
		return err
	}

	s.logger.Info(ctx, "execution created", map[string]interface{}{
		"execution_id": execution.ID.String(),
		"session_id":   execution.SessionID,
	})

	return nil
}

// GetByID retrieves an execution by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Execution, error) {
	var execution Execution
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&execution).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExecutionNotFound
		}
		s.logger.Error(ctx, "failed to get execution by ID", map[string]interface{}{
			"error":        err.Error(),
			"execution_id": id.String(),
		})
		return nil, err
	}

	return &execution, nil
}

// GetLatestBySession retrieves the most recent execution for a session.
func (s *MySQLStore) GetLatestBySession(ctx context.Context, sessionID string) (*Execution, error) {
	var execution Execution
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&execution).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExecutionNotFound
		}
		s.logger.Error(ctx, "failed to get latest execution for session", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		return nil, err
	}

	return &execution, nil
}

// ListBySession retrieves all executions for a session, newest first.
func (s *MySQLStore) ListBySession(ctx context.Context, sessionID string) ([]*Execution, error) {
	var executions []*Execution
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&executions).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list executions for session", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		return nil, err
	}

	return executions, nil
}

// Update applies the given setters to an execution.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	execution, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(execution); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(execution).Error; err != nil {
		s.logger.Error(ctx, "failed to update execution", map[string]interface{}{
			"error":        err.Error(),
			"execution_id": id.String(),
		})
		return err
	}

	return nil
}

// Start marks an execution as running.
func (s *MySQLStore) Start(ctx context.Context, id uuid.UUID) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var execution Execution
		if err := tx.WithContext(ctx).Where("id = ?", id).First(&execution).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExecutionNotFound
			}
			return err
		}

		if err := execution.Start(); err != nil {
			return err
		}

		return tx.WithContext(ctx).Save(&execution).Error
	})

	if err != nil {
		if !errors.Is(err, ErrExecutionNotFound) && !errors.Is(err, ErrExecutionAlreadyStarted) {
			s.logger.Error(ctx, "failed to start execution", map[string]interface{}{
				"error":        err.Error(),
				"execution_id": id.String(),
			})
		}
		return err
	}

	s.logger.Info(ctx, "execution started", map[string]interface{}{
		"execution_id": id.String(),
	})

	return nil
}

// Complete marks an execution as finished with its results.
func (s *MySQLStore) Complete(ctx context.Context, id uuid.UUID, summary Summary, results []Result) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var execution Execution
		if err := tx.WithContext(ctx).Where("id = ?", id).First(&execution).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExecutionNotFound
			}
			return err
		}

		if err := execution.Complete(summary, results); err != nil {
			return err
		}

		return tx.WithContext(ctx).Save(&execution).Error
	})

	if err != nil {
		if !errors.Is(err, ErrExecutionNotFound) && !errors.Is(err, ErrExecutionNotRunning) {
			s.logger.Error(ctx, "failed to complete execution", map[string]interface{}{
				"error":        err.Error(),
				"execution_id": id.String(),
			})
		}
		return err
	}

	s.logger.Info(ctx, "execution completed", map[string]interface{}{
		"execution_id": id.String(),
		"total":        summary.Total,
		"passed":       summary.Passed,
		"failed":       summary.Failed,
	})

	return nil
}

// Fail marks an execution as failed with the given reason.
func (s *MySQLStore) Fail(ctx context.Context, id uuid.UUID, reason string) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var execution Execution
		if err := tx.WithContext(ctx).Where("id = ?", id).First(&execution).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrExecutionNotFound
			}
			return err
		}

		if err := execution.Fail(reason); err != nil {
			return err
		}

		return tx.WithContext(ctx).Save(&execution).Error
	})

	if err != nil {
		if !errors.Is(err, ErrExecutionNotFound) && !errors.Is(err, ErrExecutionFinished) {
			s.logger.Error(ctx, "failed to mark execution as failed", map[string]interface{}{
				"error":        err.Error(),
				"execution_id": id.String(),
			})
		}
		return err
	}

	s.logger.Info(ctx, "execution failed", map[string]interface{}{
		"execution_id": id.String(),
		"reason":       reason,
	})

	return nil
}
