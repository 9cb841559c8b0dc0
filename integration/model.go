// Package integration stores issue-tracker connections with encrypted
// credentials and the links between executions and filed issues.
package integration

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gunitk/testforge/issuetracker"
)

var (
	ErrIntegrationNotFound  = errors.New("integration not found")
	ErrIssueLinkNotFound    = errors.New("issue link not found")
	ErrInvalidName          = errors.New("name is required")
	ErrInvalidProvider      = errors.New("invalid provider type")
	ErrInvalidCredentials   = errors.New("credentials are required")
	ErrInvalidExecutionID   = errors.New("execution_id is required")
	ErrInvalidIntegrationID = errors.New("integration_id is required")
	ErrInvalidExternalID    = errors.New("external_id is required")
)

// Integration is a stored issue-tracker connection. Credentials are held
// encrypted and never leave the store in the clear.
type Integration struct {
	ID                   uuid.UUID                 `json:"id" gorm:"type:char(36);primaryKey"`
	Name                 string                    `json:"name" gorm:"type:varchar(255);not null"`
	Provider             issuetracker.ProviderType `json:"provider" gorm:"type:varchar(20);not null"`
	EncryptedCredentials []byte                    `json:"-" gorm:"type:blob;not null"`
	IsActive             bool                      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt            time.Time                 `json:"created_at"`
	UpdatedAt            time.Time                 `json:"updated_at"`
}

func (i *Integration) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (i *Integration) Validate() error {
	if i.Name == "" {
		return ErrInvalidName
	}
	if !i.Provider.IsValid() {
		return ErrInvalidProvider
	}
	if len(i.EncryptedCredentials) == 0 {
		return ErrInvalidCredentials
	}
	return nil
}

// IssueLink ties a filed tracker issue to the execution it reports on.
type IssueLink struct {
	ID            uuid.UUID                 `json:"id" gorm:"type:char(36);primaryKey"`
	ExecutionID   uuid.UUID                 `json:"execution_id" gorm:"type:char(36);not null;index:idx_issue_links_execution_id"`
	IntegrationID uuid.UUID                 `json:"integration_id" gorm:"type:char(36);not null;index:idx_issue_links_integration_id"`
	ExternalID    string                    `json:"external_id" gorm:"type:varchar(255);not null"`
	Title         string                    `json:"title" gorm:"type:varchar(500)"`
	Status        string                    `json:"status" gorm:"type:varchar(50)"`
	URL           string                    `json:"url" gorm:"type:varchar(1000)"`
	Provider      issuetracker.ProviderType `json:"provider" gorm:"type:varchar(20);not null"`
	CreatedAt     time.Time                 `json:"created_at"`
	UpdatedAt     time.Time                 `json:"updated_at"`
}

func (il *IssueLink) BeforeCreate(tx *gorm.DB) error {
	if il.ID == uuid.Nil {
		il.ID = uuid.New()
	}
	return nil
}

func (il *IssueLink) Validate() error {
	if il.ExecutionID == uuid.Nil {
		return ErrInvalidExecutionID
	}
	if il.IntegrationID == uuid.Nil {
		return ErrInvalidIntegrationID
	}
	if il.ExternalID == "" {
		return ErrInvalidExternalID
	}
	if !il.Provider.IsValid() {
		return ErrInvalidProvider
	}
	return nil
}
