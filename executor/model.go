package executor

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrExecutionNotFound       = errors.New("execution not found")
	ErrInvalidSessionID        = errors.New("session_id is required")
	ErrInvalidTargetURL        = errors.New("target_url is required")
	ErrInvalidStatus           = errors.New("invalid execution status")
	ErrExecutionAlreadyStarted = errors.New("execution already started")
	ErrExecutionNotRunning     = errors.New("execution is not running")
	ErrExecutionFinished       = errors.New("execution already finished")
)

// Status tracks an execution batch through its lifecycle.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusRunning, StatusCompleted, StatusFailed:
		return true
	}
	return false
}

// JSONResults is a custom type for storing execution results in a JSON column.
type JSONResults []Result

func (r JSONResults) Value() (driver.Value, error) {
	if r == nil {
		return json.Marshal([]Result{})
	}
	return json.Marshal(r)
}

func (r *JSONResults) Scan(value interface{}) error {
	if value == nil {
		*r = JSONResults{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan JSONResults: not a byte slice")
	}
	var results []Result
	if err := json.Unmarshal(bytes, &results); err != nil {
		return err
	}
	*r = results
	return nil
}

// Execution records one execution batch against a target application.
type Execution struct {
	ID              uuid.UUID   `json:"id" gorm:"type:char(36);primaryKey"`
	SessionID       string      `json:"session_id" gorm:"type:char(36);not null;index:idx_executions_session_id"`
	SuiteID         *uuid.UUID  `json:"suite_id,omitempty" gorm:"type:char(36);index:idx_executions_suite_id"`
	TargetURL       string      `json:"target_url" gorm:"type:varchar(512);not null"`
	Status          Status      `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	CaseLimit       int         `json:"case_limit" gorm:"column:case_limit"`
	Results         JSONResults `json:"results" gorm:"type:json"`
	TotalTests      int         `json:"total_tests"`
	PassedCount     int         `json:"passed_count"`
	FailedCount     int         `json:"failed_count"`
	DurationSeconds float64     `json:"duration_seconds"`
	ArtifactPath    string      `json:"artifact_path,omitempty" gorm:"type:varchar(512)"`
	ErrorMessage    string      `json:"error_message,omitempty" gorm:"type:varchar(1024)"`
	StartedAt       *time.Time  `json:"started_at,omitempty"`
	CompletedAt     *time.Time  `json:"completed_at,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

func (e *Execution) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = StatusPending
	}
	return nil
}

func (e *Execution) Validate() error {
	if e.SessionID == "" {
		return ErrInvalidSessionID
	}
	if e.TargetURL == "" {
		return ErrInvalidTargetURL
	}
	if e.Status != "" && !e.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// Start marks the execution as running.
func (e *Execution) Start() error {
	if e.Status != StatusPending {
		return ErrExecutionAlreadyStarted
	}
	now := time.Now()
	e.Status = StatusRunning
	e.StartedAt = &now
	return nil
}

// Complete marks the execution as finished with its results.
func (e *Execution) Complete(summary Summary, results []Result) error {
	if e.Status != StatusRunning {
		return ErrExecutionNotRunning
	}
	now := time.Now()
	e.Status = StatusCompleted
	e.Results = JSONResults(results)
	e.TotalTests = summary.Total
	e.PassedCount = summary.Passed
	e.FailedCount = summary.Failed
	e.DurationSeconds = summary.DurationSeconds
	e.CompletedAt = &now
	return nil
}

// Fail marks the execution as failed. Unlike Complete it is also allowed
// before Start, so a batch that never acquired a browser can be closed out.
func (e *Execution) Fail(reason string) error {
	if e.Status == StatusCompleted || e.Status == StatusFailed {
		return ErrExecutionFinished
	}
	now := time.Now()
	e.Status = StatusFailed
	e.ErrorMessage = reason
	e.CompletedAt = &now
	return nil
}
