package storage

import (
	"errors"
	"testing"
)

func TestCleanObjectKey(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		want      string
		wantError bool
	}{
		{
			name: "valid simple key",
			key:  "results.json",
			want: "results.json",
		},
		{
			name: "valid session key",
			key:  "abc-123/test_cases.json",
			want: "abc-123/test_cases.json",
		},
		{
			name: "redundant segments collapsed",
			key:  "abc-123//./test_cases.json",
			want: "abc-123/test_cases.json",
		},
		{
			name:      "empty key",
			key:       "",
			wantError: true,
		},
		{
			name:      "parent traversal",
			key:       "../secrets.json",
			wantError: true,
		},
		{
			name:      "nested traversal escaping root",
			key:       "session/../../outside.json",
			wantError: true,
		},
		{
			name:      "absolute key",
			key:       "/etc/passwd",
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cleanObjectKey(tt.key)
			if tt.wantError {
				if !errors.Is(err, ErrInvalidKey) {
					t.Errorf("expected ErrInvalidKey but got: %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("key mismatch: got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	if got := contentTypeFor("s/test_cases.json"); got != "application/json" {
		t.Errorf("expected application/json, got %q", got)
	}
	if got := contentTypeFor("s/report.txt"); got != "application/octet-stream" {
		t.Errorf("expected application/octet-stream, got %q", got)
	}
}

func TestNewS3Storage_Validation(t *testing.T) {
	tests := []struct {
		name   string
		bucket string
		region string
	}{
		{name: "empty bucket", bucket: "", region: "us-east-1"},
		{name: "empty region", bucket: "artifacts", region: ""},
		{name: "both empty", bucket: "", region: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewS3Storage(tt.bucket, tt.region); err == nil {
				t.Error("expected error but got none")
			}
		})
	}
}

func TestNewBlobStorage(t *testing.T) {
	t.Run("local backend", func(t *testing.T) {
		store, err := NewBlobStorage(Config{Type: "local", BaseDir: t.TempDir()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, ok := store.(*LocalStorage); !ok {
			t.Errorf("expected *LocalStorage, got %T", store)
		}
	})

	t.Run("local backend requires base dir", func(t *testing.T) {
		if _, err := NewBlobStorage(Config{Type: "local"}); err == nil {
			t.Error("expected error but got none")
		}
	})

	t.Run("s3 backend requires bucket", func(t *testing.T) {
		if _, err := NewBlobStorage(Config{Type: "s3", Region: "us-east-1"}); err == nil {
			t.Error("expected error but got none")
		}
	})

	t.Run("s3 backend requires region", func(t *testing.T) {
		if _, err := NewBlobStorage(Config{Type: "s3", Bucket: "artifacts"}); err == nil {
			t.Error("expected error but got none")
		}
	})

	t.Run("unsupported backend", func(t *testing.T) {
		if _, err := NewBlobStorage(Config{Type: "gcs"}); err == nil {
			t.Error("expected error but got none")
		}
	})
}

func TestArtifactKeys(t *testing.T) {
	if got := TestCasesKey("abc"); got != "abc/test_cases.json" {
		t.Errorf("unexpected test cases key: %q", got)
	}
	if got := ExecutionHistoryKey("abc"); got != "abc/execution_history.json" {
		t.Errorf("unexpected execution history key: %q", got)
	}
}
