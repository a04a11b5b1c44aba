package alert

import (
	"strings"
	"time"
)

// Kind is the quantity an alert is raised on
type Kind string

const (
	KindUnits  Kind = "units"
	KindAmount Kind = "amount"
)

// Kinds lists every alert kind in evaluation order
var Kinds = []Kind{KindUnits, KindAmount}

// Title is the human heading used in notifications
func (k Kind) Title() string {
	switch k {
	case KindUnits:
		return "Monthly Units Exceeded"
	case KindAmount:
		return "Monthly Budget Exceeded"
	default:
		return "Usage Alert"
	}
}

// IsValid reports whether k is a known kind
func (k Kind) IsValid() bool {
	return k == KindUnits || k == KindAmount
}

// Severity levels
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// ZeroLimitPercentage is reported as the percentage of a zero limit
const ZeroLimitPercentage = 100

// Default limits applied when a user has not saved settings
const (
	DefaultMaxMonthlyAmount = 80000
	DefaultMaxMonthlyUnits  = 1500
)

// Event is a single threshold breach
type Event struct {
	Kind              Kind     `json:"type"`
	Severity          Severity `json:"severity"`
	Current           float64  `json:"current"`
	Limit             float64  `json:"limit"`
	PercentageOfLimit int      `json:"percentage"`
	Message           string   `json:"message"`
	Projected         bool     `json:"projected,omitempty"`
	Period            string   `json:"period,omitempty"`
}

// Limits are the user-configured thresholds and channel switches
type Limits struct {
	MaxMonthlyAmount       float64  `json:"maxMonthlyAmount"`
	MaxMonthlyUnits        float64  `json:"maxMonthlyUnits"`
	EmailRecipients        []string `json:"alertEmails"`
	EmailAlertsEnabled     bool     `json:"enableEmailAlerts"`
	DashboardAlertsEnabled bool     `json:"enablePushAlerts"`
}

// DefaultLimits returns the limits used for users without saved settings
func DefaultLimits() Limits {
	return Limits{
		MaxMonthlyAmount:       DefaultMaxMonthlyAmount,
		MaxMonthlyUnits:        DefaultMaxMonthlyUnits,
		EmailRecipients:        []string{},
		EmailAlertsEnabled:     false,
		DashboardAlertsEnabled: true,
	}
}

// Recipients returns the trimmed, de-duplicated recipient set in input order
func (l Limits) Recipients() []string {
	seen := make(map[string]struct{}, len(l.EmailRecipients))
	out := make([]string, 0, len(l.EmailRecipients))
	for _, r := range l.EmailRecipients {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		key := strings.ToLower(r)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

// Settings is the stored form of Limits
type Settings struct {
	UserID    int64     `json:"user_id"`
	Limits    Limits    `json:"limits"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Feed item status
const (
	StatusActive       = "active"
	StatusAcknowledged = "acknowledged"
)

// FeedItem is an alert surfaced on the dashboard. One item is kept per
// scope, kind, period and projection; later evaluations refresh it.
type FeedItem struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	BranchID   string    `json:"branch_id,omitempty"`
	Kind       Kind      `json:"type"`
	Severity   Severity  `json:"severity"`
	Current    float64   `json:"current"`
	Limit      float64   `json:"limit"`
	Percentage int       `json:"percentage"`
	Message    string    `json:"message"`
	Projected  bool      `json:"projected"`
	Period     string    `json:"period"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// FeedFilter narrows feed listings
type FeedFilter struct {
	BranchID string
	Kind     string
	Status   string
}
