package alert

import (
	"context"
	"time"
)

// SettingsRepository stores per-user alert limits
type SettingsRepository interface {
	// Get returns nil, nil when the user has no saved settings
	Get(ctx context.Context, userID int64) (*Settings, error)

	// Upsert creates or replaces the settings of a user
	Upsert(ctx context.Context, s *Settings) error

	// ListUserIDs returns the users that have saved settings
	ListUserIDs(ctx context.Context) ([]int64, error)
}

// FeedRepository stores dashboard alerts
type FeedRepository interface {
	// Upsert inserts the item or refreshes the existing one for the same
	// user, branch, kind, period and projection
	Upsert(ctx context.Context, item *FeedItem) (int64, error)

	// List retrieves feed items with filters and pagination
	List(ctx context.Context, userID int64, filter FeedFilter, limit, offset int) ([]*FeedItem, int64, error)

	// Acknowledge marks an item as acknowledged
	Acknowledge(ctx context.Context, userID int64, id int64) error
}

// CooldownStore holds the last-sent time per cooldown key
type CooldownStore interface {
	// Acquire records now for key and returns true when no send is recorded
	// or the recorded one is at least window old. Check and record are atomic.
	Acquire(ctx context.Context, key string, now time.Time, window time.Duration) (bool, error)

	// Record stores at as the last send for key unconditionally
	Record(ctx context.Context, key string, at time.Time) error

	// Reset forgets the given keys, or every key when none are given
	Reset(ctx context.Context, keys ...string) error
}
