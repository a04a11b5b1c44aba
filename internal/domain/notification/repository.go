package notification

import "context"

// LogRepository stores delivery attempts
type LogRepository interface {
	// Create stores a log entry
	Create(ctx context.Context, l *Log) error

	// List retrieves log entries with filters and pagination
	List(ctx context.Context, userID int64, filter LogFilter, limit, offset int) ([]*Log, int64, error)
}
