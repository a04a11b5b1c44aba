package notification

import (
	"errors"
	"time"
)

// Channel types
type Channel string

const (
	ChannelEmail     Channel = "email"
	ChannelDashboard Channel = "dashboard"
)

// DeliveryStatus of a single send
type DeliveryStatus string

const (
	StatusSent       DeliveryStatus = "sent"
	StatusFailed     DeliveryStatus = "failed"
	StatusSuppressed DeliveryStatus = "suppressed"
)

var (
	// ErrTransportNotConfigured is returned by senders without a usable transport
	ErrTransportNotConfigured = errors.New("email transport not configured")

	// ErrDispatchTimeout marks recipients still pending when a dispatch gave up waiting
	ErrDispatchTimeout = errors.New("dispatch timed out before delivery completed")
)

// EmailMessage is one outbound email
type EmailMessage struct {
	To       string
	Subject  string
	Title    string
	HTMLBody string
	TextBody string
	// Fields are extra key/value pairs for form-style transports
	Fields map[string]string
}

// RecipientError reports a failed delivery
type RecipientError struct {
	Recipient string `json:"recipient"`
	Error     string `json:"error"`
}

// DispatchResult aggregates the outcome of one dispatch
type DispatchResult struct {
	Attempted          int              `json:"attempted"`
	Succeeded          int              `json:"succeeded"`
	Failed             int              `json:"failed"`
	PerRecipientErrors []RecipientError `json:"perRecipientErrors"`
	DashboardPublished bool             `json:"dashboardPublished"`
	Suppressed         bool             `json:"suppressed,omitempty"`
}

// Log is a persisted delivery attempt
type Log struct {
	ID        string         `json:"id"`
	UserID    int64          `json:"user_id"`
	BranchID  string         `json:"branch_id,omitempty"`
	Channel   Channel        `json:"channel"`
	Recipient string         `json:"recipient,omitempty"`
	AlertKind string         `json:"alert_kind"`
	Status    DeliveryStatus `json:"status"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// LogFilter narrows log listings
type LogFilter struct {
	Channel Channel
	Status  DeliveryStatus
}
