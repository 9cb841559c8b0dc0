package executor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/storage"
	"github.com/gunitk/testforge/testcase"
)

// ErrNoCases is returned when an execution request carries no test cases.
var ErrNoCases = errors.New("no test cases to execute")

// ServiceConfig controls batch execution.
type ServiceConfig struct {
	// MaxSessions caps concurrent browser sessions process-wide.
	MaxSessions          int
	StepTimeout          time.Duration
	PerformanceThreshold time.Duration
}

// Service runs execution batches. It owns the driver lifecycle, caps
// concurrent browser sessions and persists each batch with its artifact.
// Execution within a batch is serial; separate sessions run in parallel up
// to the session cap.
type Service struct {
	store     Store
	artifacts storage.BlobStorage
	newDriver DriverFactory
	slots     *semaphore.Weighted
	engineCfg EngineConfig
	logger    logger.Logger
}

func NewService(store Store, artifacts storage.BlobStorage, newDriver DriverFactory, cfg ServiceConfig, log logger.Logger) *Service {
	if cfg.MaxSessions <= 0 {
		cfg.MaxSessions = 2
	}
	return &Service{
		store:     store,
		artifacts: artifacts,
		newDriver: newDriver,
		slots:     semaphore.NewWeighted(int64(cfg.MaxSessions)),
		engineCfg: EngineConfig{
			StepTimeout:          cfg.StepTimeout,
			PerformanceThreshold: cfg.PerformanceThreshold,
		},
		logger: log,
	}
}

// Request carries one execution call.
type Request struct {
	SessionID string
	SuiteID   *uuid.UUID
	TargetURL string
	Cases     []testcase.TestCase
	Limit     int
}

// History is the execution artifact document.
type History struct {
	Summary Summary  `json:"summary"`
	Results []Result `json:"results"`
}

// Run executes the highest-priority cases from the request against the
// target application. Per-case failures are recorded in the results; the
// only batch-level errors are driver unavailability, persistence failures
// and cancellation.
func (s *Service) Run(ctx context.Context, req Request) (*Execution, error) {
	if len(req.Cases) == 0 {
		return nil, ErrNoCases
	}

	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	ordered := make([]testcase.TestCase, len(req.Cases))
	copy(ordered, req.Cases)
	testcase.SortByPriority(ordered)

	execution := &Execution{
		SessionID: req.SessionID,
		SuiteID:   req.SuiteID,
		TargetURL: req.TargetURL,
		CaseLimit: limit,
	}
	if err := s.store.Create(ctx, execution); err != nil {
		return nil, fmt.Errorf("failed to persist execution: %w", err)
	}

	if err := s.slots.Acquire(ctx, 1); err != nil {
		s.failRun(ctx, execution.ID, "cancelled while waiting for a browser slot")
		return nil, err
	}
	defer s.slots.Release(1)

	driver, err := s.newDriver()
	if err != nil {
		s.logger.Error(ctx, "Browser driver unavailable", map[string]interface{}{
			"execution_id": execution.ID.String(),
			"error":        err.Error(),
		})
		s.failRun(ctx, execution.ID, err.Error())
		return nil, ErrDriverUnavailable
	}
	defer func() {
		if err := driver.Close(); err != nil {
			s.logger.Warn(ctx, "Failed to close browser driver", map[string]interface{}{
				"execution_id": execution.ID.String(),
				"error":        err.Error(),
			})
		}
	}()

	if err := s.store.Start(ctx, execution.ID); err != nil {
		return nil, err
	}

	engine := NewEngine(driver, s.engineCfg, s.logger)
	summary, results, err := engine.Execute(ctx, ordered, req.TargetURL, limit)
	if err != nil {
		s.failRun(ctx, execution.ID, err.Error())
		return nil, err
	}

	if err := s.store.Complete(ctx, execution.ID, summary, results); err != nil {
		return nil, err
	}

	s.writeArtifact(ctx, execution.ID, req.SessionID, summary, results)

	return s.store.GetByID(ctx, execution.ID)
}

// failRun marks an execution as failed, logging rather than surfacing
// bookkeeping errors.
func (s *Service) failRun(ctx context.Context, id uuid.UUID, reason string) {
	if err := s.store.Fail(ctx, id, reason); err != nil {
		s.logger.Error(ctx, "Failed to mark execution as failed", map[string]interface{}{
			"execution_id": id.String(),
			"error":        err.Error(),
		})
	}
}

// writeArtifact stores the batch outcome as a downloadable JSON document.
// Artifact failures never fail the execution; the execution record is the
// source of truth.
func (s *Service) writeArtifact(ctx context.Context, id uuid.UUID, sessionID string, summary Summary, results []Result) {
	data, err := json.MarshalIndent(History{Summary: summary, Results: results}, "", "  ")
	if err != nil {
		s.logger.Warn(ctx, "Failed to encode execution artifact", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	key := storage.ExecutionHistoryKey(sessionID)
	if err := s.artifacts.Save(ctx, key, data); err != nil {
		s.logger.Warn(ctx, "Failed to write execution artifact", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return
	}

	if err := s.store.Update(ctx, id, SetArtifactPath(key)); err != nil {
		s.logger.Warn(ctx, "Failed to record artifact path", map[string]interface{}{
			"execution_id": id.String(),
			"error":        err.Error(),
		})
	}
}
