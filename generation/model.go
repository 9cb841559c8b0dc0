package generation

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gunitk/testforge/testcase"
)

var (
	// ErrSuiteNotFound is returned when a test suite is not found.
	ErrSuiteNotFound = errors.New("test suite not found")

	// ErrInvalidSessionID is returned when session_id is not set.
	ErrInvalidSessionID = errors.New("session_id is required")

	// ErrInvalidTargetURL is returned when target_url is empty.
	ErrInvalidTargetURL = errors.New("target_url is required")

	// ErrInvalidProviderUsed is returned when provider_used is empty.
	ErrInvalidProviderUsed = errors.New("provider_used is required")
)

// Suite is one persisted generation outcome: the validated test cases
// produced for a session, with provenance and the artifact location.
type Suite struct {
	ID           uuid.UUID          `json:"id" gorm:"type:char(36);primaryKey"`
	SessionID    string             `json:"session_id" gorm:"type:char(36);not null;index"`
	TargetURL    string             `json:"target_url" gorm:"type:varchar(512);not null"`
	ProviderUsed string             `json:"provider_used" gorm:"type:varchar(50);not null"`
	Categories   string             `json:"categories" gorm:"type:varchar(255)"`
	CaseCount    int                `json:"case_count" gorm:"not null"`
	Cases        testcase.JSONCases `json:"cases" gorm:"type:json"`
	ArtifactPath string             `json:"artifact_path" gorm:"type:varchar(512)"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// BeforeCreate hook to generate UUID before creating a new suite
func (s *Suite) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Validate checks if the suite has valid required fields.
func (s *Suite) Validate() error {
	if s.SessionID == "" {
		return ErrInvalidSessionID
	}
	if s.TargetURL == "" {
		return ErrInvalidTargetURL
	}
	if s.ProviderUsed == "" {
		return ErrInvalidProviderUsed
	}
	return nil
}

// CategoryList splits the stored comma-joined category string back into
// typed categories. Unknown entries are dropped.
func (s *Suite) CategoryList() []testcase.Category {
	var categories []testcase.Category
	for _, part := range strings.Split(s.Categories, ",") {
		if category, ok := testcase.ParseCategory(part); ok {
			categories = append(categories, category)
		}
	}
	return categories
}

func joinCategories(categories []testcase.Category) string {
	parts := make([]string, 0, len(categories))
	for _, category := range categories {
		parts = append(parts, string(category))
	}
	return strings.Join(parts, ",")
}
