package testcase

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrInvalidName           = errors.New("test case name is required")
	ErrInvalidDescription    = errors.New("test case description is required")
	ErrInvalidCategory       = errors.New("invalid test case category")
	ErrInvalidPriority       = errors.New("invalid test case priority")
	ErrNoSteps               = errors.New("test case requires at least one step")
	ErrInvalidExpectedResult = errors.New("test case expected result is required")
)

// Category classifies what aspect of the application a test case exercises.
type Category string

const (
	CategoryFunctional    Category = "functional"
	CategoryUI            Category = "ui"
	CategoryValidation    Category = "validation"
	CategoryErrorHandling Category = "error-handling"
	CategorySecurity      Category = "security"
	CategoryPerformance   Category = "performance"
	CategoryAccessibility Category = "accessibility"
)

func (c Category) IsValid() bool {
	switch c {
	case CategoryFunctional, CategoryUI, CategoryValidation, CategoryErrorHandling,
		CategorySecurity, CategoryPerformance, CategoryAccessibility:
		return true
	}
	return false
}

// AllCategories returns every category in the fixed generation order.
func AllCategories() []Category {
	return []Category{
		CategoryFunctional,
		CategoryUI,
		CategoryValidation,
		CategoryErrorHandling,
		CategorySecurity,
		CategoryPerformance,
		CategoryAccessibility,
	}
}

// ParseCategory maps free-form category text onto the fixed enum.
// Providers label categories loosely ("Data Validation", "UI/UX Testing"),
// so matching is case-insensitive and tolerant of separators and a
// trailing "testing" word.
func ParseCategory(s string) (Category, bool) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "-", "_", "-", "/", "-").Replace(normalized)
	normalized = strings.TrimSuffix(normalized, "-testing")

	switch normalized {
	case "functional":
		return CategoryFunctional, true
	case "ui", "ui-ux", "uiux":
		return CategoryUI, true
	case "validation", "data-validation":
		return CategoryValidation, true
	case "error-handling", "errorhandling", "error":
		return CategoryErrorHandling, true
	case "security":
		return CategorySecurity, true
	case "performance":
		return CategoryPerformance, true
	case "accessibility":
		return CategoryAccessibility, true
	}
	return "", false
}

// Priority orders test cases for execution selection.
type Priority string

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Weight returns the sort weight used when ranking cases for execution.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 1
}

// ParsePriority maps free-form priority text onto the fixed enum.
func ParsePriority(s string) (Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high":
		return PriorityHigh, true
	case "medium":
		return PriorityMedium, true
	case "low":
		return PriorityLow, true
	}
	return "", false
}

// TestCase is the canonical test case schema. Every TestCase emitted by
// the Normalizer satisfies Validate; downstream consumers treat the data
// as trusted.
type TestCase struct {
	Name           string                 `json:"name"`
	Description    string                 `json:"description"`
	Category       Category               `json:"category"`
	Priority       Priority               `json:"priority"`
	Steps          []string               `json:"steps"`
	ExpectedResult string                 `json:"expected_result"`
	TestData       map[string]interface{} `json:"test_data,omitempty"`
	EstimatedTime  string                 `json:"estimated_time,omitempty"`
}

func (tc *TestCase) Validate() error {
	if strings.TrimSpace(tc.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(tc.Description) == "" {
		return ErrInvalidDescription
	}
	if !tc.Category.IsValid() {
		return ErrInvalidCategory
	}
	if !tc.Priority.IsValid() {
		return ErrInvalidPriority
	}
	if len(tc.Steps) == 0 {
		return ErrNoSteps
	}
	if strings.TrimSpace(tc.ExpectedResult) == "" {
		return ErrInvalidExpectedResult
	}
	return nil
}

// JSONCases is a custom type for storing a test case list in a JSON column.
type JSONCases []TestCase

func (c JSONCases) Value() (driver.Value, error) {
	if c == nil {
		return json.Marshal([]TestCase{})
	}
	return json.Marshal(c)
}

func (c *JSONCases) Scan(value interface{}) error {
	if value == nil {
		*c = JSONCases{}
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to scan JSONCases: not a byte slice")
	}
	var cases []TestCase
	if err := json.Unmarshal(bytes, &cases); err != nil {
		return err
	}
	*c = cases
	return nil
}
