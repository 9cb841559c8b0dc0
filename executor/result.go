// Package executor replays generated test cases against a live application
// through a browser automation driver and records the outcome of each case.
package executor

import (
	"errors"
	"time"

	"github.com/gunitk/testforge/testcase"
)

var (
	ErrCaseAlreadyStarted = errors.New("test case already started")
	ErrCaseNotRunning     = errors.New("test case is not running")
)

// CaseStatus tracks a single test case through its execution lifecycle.
// Passed and failed are terminal.
type CaseStatus string

const (
	CaseStatusPending CaseStatus = "pending"
	CaseStatusRunning CaseStatus = "running"
	CaseStatusPassed  CaseStatus = "passed"
	CaseStatusFailed  CaseStatus = "failed"
)

// Result is the terminal outcome of one executed test case. Immutable once
// produced.
type Result struct {
	TestName        string            `json:"test_name"`
	Category        testcase.Category `json:"category"`
	Priority        testcase.Priority `json:"priority"`
	Status          CaseStatus        `json:"status"`
	DurationSeconds float64           `json:"duration_seconds"`
	Details         string            `json:"details"`
	Error           string            `json:"error,omitempty"`
	StartedAt       time.Time         `json:"started_at"`
}

// Summary aggregates the results of one execution batch.
type Summary struct {
	Total           int       `json:"total_tests"`
	Passed          int       `json:"passed"`
	Failed          int       `json:"failed"`
	DurationSeconds float64   `json:"duration_seconds"`
	CompletedAt     time.Time `json:"completed_at"`
}

// CaseRun drives one test case through pending -> running -> passed/failed.
// A case may only be started once and only finished while running.
type CaseRun struct {
	Case testcase.TestCase

	status  CaseStatus
	started time.Time
	result  Result
}

func NewCaseRun(tc testcase.TestCase) *CaseRun {
	return &CaseRun{Case: tc, status: CaseStatusPending}
}

func (r *CaseRun) Status() CaseStatus {
	return r.status
}

// Start marks the case as running.
func (r *CaseRun) Start() error {
	if r.status != CaseStatusPending {
		return ErrCaseAlreadyStarted
	}
	r.status = CaseStatusRunning
	r.started = time.Now()
	return nil
}

// Pass marks the case as passed with the recorded observations.
func (r *CaseRun) Pass(details string) error {
	if r.status != CaseStatusRunning {
		return ErrCaseNotRunning
	}
	r.finish(CaseStatusPassed, details, nil)
	return nil
}

// Fail marks the case as failed with the triggering error.
func (r *CaseRun) Fail(details string, cause error) error {
	if r.status != CaseStatusRunning {
		return ErrCaseNotRunning
	}
	r.finish(CaseStatusFailed, details, cause)
	return nil
}

func (r *CaseRun) finish(status CaseStatus, details string, cause error) {
	r.status = status
	r.result = Result{
		TestName:        r.Case.Name,
		Category:        r.Case.Category,
		Priority:        r.Case.Priority,
		Status:          status,
		DurationSeconds: time.Since(r.started).Seconds(),
		Details:         details,
		StartedAt:       r.started.UTC(),
	}
	if cause != nil {
		r.result.Error = cause.Error()
	}
}

// Result returns the terminal outcome. Only valid after Pass or Fail.
func (r *CaseRun) Result() Result {
	return r.result
}
