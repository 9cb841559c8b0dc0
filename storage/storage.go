// Package storage persists generation and execution artifacts. Artifacts are
// small JSON documents addressed by session-scoped keys.
package storage

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// BlobStorage stores and retrieves artifact documents.
type BlobStorage interface {
	// Save writes data at the specified key, replacing any previous content.
	Save(ctx context.Context, key string, data []byte) error

	// Load retrieves the data stored at the specified key.
	Load(ctx context.Context, key string) ([]byte, error)

	// Delete removes the data at the specified key.
	Delete(ctx context.Context, key string) error

	// Exists checks if data exists at the specified key.
	Exists(ctx context.Context, key string) (bool, error)

	// URL returns a URL for accessing the data at the specified key.
	// For local storage this is a filesystem path; for S3 a presigned URL.
	URL(ctx context.Context, key string) (string, error)
}

// TestCasesKey is the artifact key for a session's generated test cases.
func TestCasesKey(sessionID string) string {
	return sessionID + "/test_cases.json"
}

// ExecutionHistoryKey is the artifact key for a session's execution history.
func ExecutionHistoryKey(sessionID string) string {
	return sessionID + "/execution_history.json"
}

// Config selects and parameterizes a BlobStorage backend.
type Config struct {
	Type          string
	BaseDir       string
	Bucket        string
	Region        string
	PresignExpiry time.Duration
}

// NewBlobStorage creates a BlobStorage implementation based on configuration.
func NewBlobStorage(cfg Config) (BlobStorage, error) {
	switch strings.ToLower(cfg.Type) {
	case "local":
		if cfg.BaseDir == "" {
			return nil, fmt.Errorf("base_dir is required for local storage")
		}
		return NewLocalStorage(cfg.BaseDir)

	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("bucket is required for S3 storage")
		}
		if cfg.Region == "" {
			return nil, fmt.Errorf("region is required for S3 storage")
		}

		s3Storage, err := NewS3Storage(cfg.Bucket, cfg.Region)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 storage: %w", err)
		}
		if cfg.PresignExpiry > 0 {
			s3Storage.presignExpiration = cfg.PresignExpiry
		}
		return s3Storage, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
