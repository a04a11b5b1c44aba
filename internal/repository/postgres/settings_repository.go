package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
)

type SettingsRepository struct {
	db *DB
}

func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{db: db}
}

func (r *SettingsRepository) Get(ctx context.Context, userID int64) (*alert.Settings, error) {
	query := `
		SELECT user_id, max_monthly_amount, max_monthly_units, alert_emails,
			enable_email_alerts, enable_push_alerts, created_at, updated_at
		FROM alert_settings WHERE user_id = ?
	`

	var s alert.Settings
	var emails, createdAt, updatedAt string
	err := r.db.queryRow(ctx, "select", "alert_settings", query, userID).Scan(
		&s.UserID, &s.Limits.MaxMonthlyAmount, &s.Limits.MaxMonthlyUnits, &emails,
		&s.Limits.EmailAlertsEnabled, &s.Limits.DashboardAlertsEnabled, &createdAt, &updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.DatabaseError("Failed to get alert settings", err)
	}

	if err := json.Unmarshal([]byte(emails), &s.Limits.EmailRecipients); err != nil {
		return nil, errors.DatabaseError("Failed to decode alert recipients", err)
	}
	if s.Limits.EmailRecipients == nil {
		s.Limits.EmailRecipients = []string{}
	}
	s.CreatedAt = parseTime(createdAt)
	s.UpdatedAt = parseTime(updatedAt)

	return &s, nil
}

func (r *SettingsRepository) Upsert(ctx context.Context, s *alert.Settings) error {
	recipients := s.Limits.EmailRecipients
	if recipients == nil {
		recipients = []string{}
	}
	emails, err := json.Marshal(recipients)
	if err != nil {
		return errors.Internal("Failed to encode alert recipients", err)
	}

	query := `
		INSERT INTO alert_settings (user_id, max_monthly_amount, max_monthly_units, alert_emails,
			enable_email_alerts, enable_push_alerts, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			max_monthly_amount = excluded.max_monthly_amount,
			max_monthly_units = excluded.max_monthly_units,
			alert_emails = excluded.alert_emails,
			enable_email_alerts = excluded.enable_email_alerts,
			enable_push_alerts = excluded.enable_push_alerts,
			updated_at = excluded.updated_at
	`

	_, err = r.db.exec(ctx, "upsert", "alert_settings", query,
		s.UserID, s.Limits.MaxMonthlyAmount, s.Limits.MaxMonthlyUnits, string(emails),
		s.Limits.EmailAlertsEnabled, s.Limits.DashboardAlertsEnabled,
		formatTime(s.CreatedAt), formatTime(s.UpdatedAt),
	)
	if err != nil {
		return errors.DatabaseError("Failed to save alert settings", err)
	}
	return nil
}

func (r *SettingsRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.db.query(ctx, "select", "alert_settings", "SELECT user_id FROM alert_settings ORDER BY user_id")
	if err != nil {
		return nil, errors.DatabaseError("Failed to list alert settings", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, errors.DatabaseError("Failed to scan user ID", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
