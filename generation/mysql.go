package generation

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

// NewMySQLStore creates a new MySQL-backed suite store.
func NewMySQLStore(db *gorm.DB, log logger.Logger) *MySQLStore {
	return &MySQLStore{
		db:     db,
		logger: log,
	}
}

// Create creates a new suite record in the database.
func (s *MySQLStore) Create(ctx context.Context, suite *Suite) error {
	if err := suite.Validate(); err != nil {
		return err
	}

	if err := s.db.WithContext(ctx).Create(suite).Error; err != nil {
		s.logger.Error(ctx, "failed to create test suite", map[string]interface{}{
			"error":      err.Error(),
			"session_id": suite.SessionID,
		})
		return err
	}

	s.logger.Info(ctx, "test suite created", map[string]interface{}{
		"suite_id":   suite.ID.String(),
		"session_id": suite.SessionID,
		"case_count": suite.CaseCount,
	})

	return nil
}

// GetByID retrieves a suite by its ID.
func (s *MySQLStore) GetByID(ctx context.Context, id uuid.UUID) (*Suite, error) {
	var suite Suite
	err := s.db.WithContext(ctx).
		Where("id = ?", id).
		First(&suite).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSuiteNotFound
		}
		s.logger.Error(ctx, "failed to get suite by ID", map[string]interface{}{
			"error":    err.Error(),
			"suite_id": id.String(),
		})
		return nil, err
	}

	return &suite, nil
}

// GetLatestBySession retrieves the most recently created suite for a session.
func (s *MySQLStore) GetLatestBySession(ctx context.Context, sessionID string) (*Suite, error) {
	var suite Suite
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		First(&suite).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSuiteNotFound
		}
		s.logger.Error(ctx, "failed to get latest suite for session", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		return nil, err
	}

	return &suite, nil
}

// ListBySession retrieves all suites for a session, newest first.
func (s *MySQLStore) ListBySession(ctx context.Context, sessionID string) ([]*Suite, error) {
	var suites []*Suite
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&suites).Error

	if err != nil {
		s.logger.Error(ctx, "failed to list suites for session", map[string]interface{}{
			"error":      err.Error(),
			"session_id": sessionID,
		})
		return nil, err
	}

	return suites, nil
}

// Update updates a suite with the given setters.
func (s *MySQLStore) Update(ctx context.Context, id uuid.UUID, setters ...UpdateSetter) error {
	suite, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	for _, setter := range setters {
		if err := setter(suite); err != nil {
			return err
		}
	}

	if err := s.db.WithContext(ctx).Save(suite).Error; err != nil {
		s.logger.Error(ctx, "failed to update suite", map[string]interface{}{
			"error":    err.Error(),
			"suite_id": id.String(),
		})
		return err
	}

	return nil
}

// Delete deletes a suite by its ID.
func (s *MySQLStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&Suite{})

	if result.Error != nil {
		s.logger.Error(ctx, "failed to delete suite", map[string]interface{}{
			"error":    result.Error.Error(),
			"suite_id": id.String(),
		})
		return result.Error
	}

	if result.RowsAffected == 0 {
		return ErrSuiteNotFound
	}

	s.logger.Info(ctx, "test suite deleted", map[string]interface{}{
		"suite_id": id.String(),
	})

	return nil
}
