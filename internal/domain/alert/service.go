package alert

import (
	"context"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
)

// Evaluator compares totals against limits
type Evaluator interface {
	// Evaluate returns zero, one or two events, units first
	Evaluate(totals usage.Totals, limits Limits) []Event

	// EvaluateForecast returns projected events for a forecast
	EvaluateForecast(f *forecast.Forecast, limits Limits) []Event
}

// Deduplicator gates email notifications per scope and kind
type Deduplicator interface {
	// Admit reports whether a notification may be sent and records it if so
	Admit(ctx context.Context, scope usage.Scope, kind Kind, now time.Time) bool

	// MarkSent records a send without checking the window
	MarkSent(ctx context.Context, scope usage.Scope, kind Kind, now time.Time) error

	// Reset clears cooldowns for the scope, all kinds when none are given
	Reset(ctx context.Context, scope usage.Scope, kinds ...Kind) error
}

// SettingsService manages alert limits
type SettingsService interface {
	// Get returns the saved limits, creating defaults on first access
	Get(ctx context.Context, userID int64) (*Settings, error)

	// Update applies a partial update and returns the stored result
	Update(ctx context.Context, userID int64, update LimitsUpdate) (*Settings, error)
}

// LimitsUpdate carries the fields of a partial settings update
type LimitsUpdate struct {
	MaxMonthlyAmount       *float64
	MaxMonthlyUnits        *float64
	EmailRecipients        []string
	EmailAlertsEnabled     *bool
	DashboardAlertsEnabled *bool
}

// Apply returns l with the non-nil fields of u applied
func (u LimitsUpdate) Apply(l Limits) Limits {
	if u.MaxMonthlyAmount != nil {
		l.MaxMonthlyAmount = *u.MaxMonthlyAmount
	}
	if u.MaxMonthlyUnits != nil {
		l.MaxMonthlyUnits = *u.MaxMonthlyUnits
	}
	if u.EmailRecipients != nil {
		l.EmailRecipients = append([]string(nil), u.EmailRecipients...)
	}
	if u.EmailAlertsEnabled != nil {
		l.EmailAlertsEnabled = *u.EmailAlertsEnabled
	}
	if u.DashboardAlertsEnabled != nil {
		l.DashboardAlertsEnabled = *u.DashboardAlertsEnabled
	}
	return l
}
