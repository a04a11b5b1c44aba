package dto

import (
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
)

// AlertSettingsDTO represents alert settings in API responses.
// Uses camelCase for frontend compatibility.
type AlertSettingsDTO struct {
	MaxMonthlyAmount  float64   `json:"maxMonthlyAmount"`
	MaxMonthlyUnits   float64   `json:"maxMonthlyUnits"`
	AlertEmails       []string  `json:"alertEmails"`
	EnableEmailAlerts bool      `json:"enableEmailAlerts"`
	EnablePushAlerts  bool      `json:"enablePushAlerts"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UpdateAlertSettingsRequest is a partial settings update
type UpdateAlertSettingsRequest struct {
	MaxMonthlyAmount  *float64 `json:"maxMonthlyAmount,omitempty" validate:"omitempty,min=0"`
	MaxMonthlyUnits   *float64 `json:"maxMonthlyUnits,omitempty" validate:"omitempty,min=0"`
	AlertEmails       []string `json:"alertEmails,omitempty" validate:"omitempty,dive,email"`
	EnableEmailAlerts *bool    `json:"enableEmailAlerts,omitempty"`
	EnablePushAlerts  *bool    `json:"enablePushAlerts,omitempty"`
}

// TestEmailRequest asks for a test email
type TestEmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// AlertFeedDTO represents a dashboard alert
type AlertFeedDTO struct {
	ID         int64     `json:"id"`
	BranchID   string    `json:"branchId,omitempty"`
	Type       string    `json:"type"`
	Severity   string    `json:"severity"`
	Current    float64   `json:"current"`
	Limit      float64   `json:"limit"`
	Percentage int       `json:"percentage"`
	Message    string    `json:"message"`
	Projected  bool      `json:"projected"`
	Period     string    `json:"period"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NotificationLogDTO represents a delivery attempt
type NotificationLogDTO struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branchId,omitempty"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient,omitempty"`
	AlertType string    `json:"alertType"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUpdate converts the request into a domain update
func (r UpdateAlertSettingsRequest) ToUpdate() alert.LimitsUpdate {
	return alert.LimitsUpdate{
		MaxMonthlyAmount:       r.MaxMonthlyAmount,
		MaxMonthlyUnits:        r.MaxMonthlyUnits,
		EmailRecipients:        r.AlertEmails,
		EmailAlertsEnabled:     r.EnableEmailAlerts,
		DashboardAlertsEnabled: r.EnablePushAlerts,
	}
}

// SettingsToDTO converts stored settings
func SettingsToDTO(s *alert.Settings) AlertSettingsDTO {
	emails := s.Limits.EmailRecipients
	if emails == nil {
		emails = []string{}
	}
	return AlertSettingsDTO{
		MaxMonthlyAmount:  s.Limits.MaxMonthlyAmount,
		MaxMonthlyUnits:   s.Limits.MaxMonthlyUnits,
		AlertEmails:       emails,
		EnableEmailAlerts: s.Limits.EmailAlertsEnabled,
		EnablePushAlerts:  s.Limits.DashboardAlertsEnabled,
		UpdatedAt:         s.UpdatedAt,
	}
}

// FeedItemToDTO converts a feed item
func FeedItemToDTO(f *alert.FeedItem) AlertFeedDTO {
	return AlertFeedDTO{
		ID:         f.ID,
		BranchID:   f.BranchID,
		Type:       string(f.Kind),
		Severity:   string(f.Severity),
		Current:    f.Current,
		Limit:      f.Limit,
		Percentage: f.Percentage,
		Message:    f.Message,
		Projected:  f.Projected,
		Period:     f.Period,
		Status:     f.Status,
		CreatedAt:  f.CreatedAt,
		UpdatedAt:  f.UpdatedAt,
	}
}

// LogToDTO converts a notification log entry
func LogToDTO(l *notification.Log) NotificationLogDTO {
	return NotificationLogDTO{
		ID:        l.ID,
		BranchID:  l.BranchID,
		Channel:   string(l.Channel),
		Recipient: l.Recipient,
		AlertType: l.AlertKind,
		Status:    string(l.Status),
		Error:     l.Error,
		CreatedAt: l.CreatedAt,
	}
}
