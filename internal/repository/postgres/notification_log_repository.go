package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
)

type NotificationLogRepository struct {
	db *DB
}

func NewNotificationLogRepository(db *DB) *NotificationLogRepository {
	return &NotificationLogRepository{db: db}
}

func (r *NotificationLogRepository) Create(ctx context.Context, l *notification.Log) error {
	query := `
		INSERT INTO notification_logs (id, user_id, branch_id, channel, recipient, alert_kind, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.exec(ctx, "insert", "notification_logs", query,
		l.ID, l.UserID, l.BranchID, string(l.Channel), l.Recipient, l.AlertKind,
		string(l.Status), l.Error, formatTime(l.CreatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to create notification log", err)
	}
	return nil
}

func (r *NotificationLogRepository) List(ctx context.Context, userID int64, filter notification.LogFilter, limit, offset int) ([]*notification.Log, int64, error) {
	where := []string{"user_id = ?"}
	args := []interface{}{userID}

	if filter.Channel != "" {
		where = append(where, "channel = ?")
		args = append(args, string(filter.Channel))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}
	whereClause := strings.Join(where, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM notification_logs WHERE %s", whereClause)
	if err := r.db.queryRow(ctx, "count", "notification_logs", countQuery, args...).Scan(&total); err != nil {
		return nil, 0, errors.DatabaseError("Failed to count notification logs", err)
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, branch_id, channel, recipient, alert_kind, status, error, created_at
		FROM notification_logs WHERE %s ORDER BY created_at DESC LIMIT ? OFFSET ?
	`, whereClause)
	args = append(args, limit, offset)

	rows, err := r.db.query(ctx, "select", "notification_logs", query, args...)
	if err != nil {
		return nil, 0, errors.DatabaseError("Failed to list notification logs", err)
	}
	defer rows.Close()

	logs := make([]*notification.Log, 0, limit)
	for rows.Next() {
		var l notification.Log
		var channel, status, createdAt string
		if err := rows.Scan(&l.ID, &l.UserID, &l.BranchID, &channel, &l.Recipient,
			&l.AlertKind, &status, &l.Error, &createdAt); err != nil {
			return nil, 0, errors.DatabaseError("Failed to scan notification log", err)
		}
		l.Channel = notification.Channel(channel)
		l.Status = notification.DeliveryStatus(status)
		l.CreatedAt = parseTime(createdAt)
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, errors.DatabaseError("Failed to list notification logs", err)
	}

	return logs, total, nil
}
