package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
)

type FeedRepository struct {
	db *DB
}

func NewFeedRepository(db *DB) *FeedRepository {
	return &FeedRepository{db: db}
}

// Upsert inserts the item or refreshes the values of the existing one.
// A refreshed item becomes active again only if its severity changed.
func (r *FeedRepository) Upsert(ctx context.Context, item *alert.FeedItem) (int64, error) {
	now := time.Now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = alert.StatusActive
	}

	query := `
		INSERT INTO alert_feed (user_id, branch_id, kind, severity, current_value, limit_value,
			percentage, message, projected, period, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, branch_id, kind, period, projected) DO UPDATE SET
			status = CASE WHEN alert_feed.severity = excluded.severity THEN alert_feed.status ELSE excluded.status END,
			severity = excluded.severity,
			current_value = excluded.current_value,
			limit_value = excluded.limit_value,
			percentage = excluded.percentage,
			message = excluded.message,
			updated_at = excluded.updated_at
		RETURNING id
	`

	var id int64
	err := r.db.queryRow(ctx, "upsert", "alert_feed", query,
		item.UserID, item.BranchID, string(item.Kind), string(item.Severity), item.Current, item.Limit,
		item.Percentage, item.Message, item.Projected, item.Period, item.Status,
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	).Scan(&id)
	if err != nil {
		return 0, errors.DatabaseError("Failed to save alert", err)
	}

	item.ID = id
	return id, nil
}

func (r *FeedRepository) List(ctx context.Context, userID int64, filter alert.FeedFilter, limit, offset int) ([]*alert.FeedItem, int64, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}

	if filter.BranchID != "" {
		where = append(where, "branch_id = ?")
		args = append(args, filter.BranchID)
	}
	if filter.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM alert_feed WHERE %s", whereClause)
	if err := r.db.queryRow(ctx, "count", "alert_feed", countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count alerts", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, branch_id, kind, severity, current_value, limit_value, percentage,
			message, projected, period, status, created_at, updated_at
		FROM alert_feed WHERE %s ORDER BY updated_at DESC, id DESC LIMIT ? OFFSET ?
	`, whereClause)
	args = append(args, limit, offset)

	rows, err := r.db.query(ctx, "select", "alert_feed", query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list alerts", err)
	}
	defer rows.Close()

	items := make([]*alert.FeedItem, 0, limit)
	for rows.Next() {
		var item alert.FeedItem
		var kind, severity, createdAt, updatedAt string
		if err := rows.Scan(&item.ID, &item.UserID, &item.BranchID, &kind, &severity,
			&item.Current, &item.Limit, &item.Percentage, &item.Message, &item.Projected,
			&item.Period, &item.Status, &createdAt, &updatedAt); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan alert", err)
		}
		item.Kind = alert.Kind(kind)
		item.Severity = alert.Severity(severity)
		item.CreatedAt = parseTime(createdAt)
		item.UpdatedAt = parseTime(updatedAt)
		items = append(items, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to list alerts", err)
	}

	return items, total, nil
}

func (r *FeedRepository) Acknowledge(ctx context.Context, userID int64, id int64) error {
	result, err := r.db.exec(ctx, "update", "alert_feed",
		"UPDATE alert_feed SET status = ?, updated_at = ? WHERE user_id = ? AND id = ?",
		alert.StatusAcknowledged, formatTime(time.Now()), userID, id,
	)
	if err != nil {
		return errors.DatabaseError("Failed to acknowledge alert", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return errors.DatabaseError("Failed to get affected rows", err)
	}
	if rows == 0 {
		return errors.NotFound("Alert")
	}

	return nil
}
