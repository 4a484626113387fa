package ports

import "context"

// Fields carries structured key/value pairs attached to a log line.
type Fields map[string]interface{}

// Logger is the structured logging contract used by the service, store and CLI.
// The analytics package does not log.
type Logger interface {
	// Debug logs a message at Debug level.
	Debug(ctx context.Context, msg string, fields ...Fields)
	// Info logs a message at Info level.
	Info(ctx context.Context, msg string, fields ...Fields)
	// Warn logs a message at Warning level.
	Warn(ctx context.Context, msg string, fields ...Fields)
	// Error logs an error message at Error level.
	Error(ctx context.Context, err error, msg string, fields ...Fields)
}
