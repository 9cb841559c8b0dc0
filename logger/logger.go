package logger

import "context"

// Logger is the logging interface used across the application.
// Implementations must be safe for concurrent use.
type Logger interface {
	Debug(ctx context.Context, msg string, fields map[string]interface{})
	Info(ctx context.Context, msg string, fields map[string]interface{})
	Warn(ctx context.Context, msg string, fields map[string]interface{})
	Error(ctx context.Context, msg string, fields map[string]interface{})

	// WithField returns a logger that includes the given field on every entry.
	WithField(key string, value interface{}) Logger

	// WithFields returns a logger that includes the given fields on every entry.
	WithFields(fields map[string]interface{}) Logger
}
