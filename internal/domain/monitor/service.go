package monitor

import (
	"context"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
)

// Service runs evaluation cycles against stored bills
type Service interface {
	// Check runs aggregate, forecast, evaluate and dispatch for a scope
	Check(ctx context.Context, scope usage.Scope) (*CheckResult, error)

	// Forecast returns the forecast for a scope from stored bills
	Forecast(ctx context.Context, scope usage.Scope) (*ForecastResult, error)

	// BranchForecasts forecasts every branch of a user independently
	BranchForecasts(ctx context.Context, userID int64) (forecast.BatchResult, error)

	// CheckAll runs Check for every user with saved settings
	CheckAll(ctx context.Context) error
}
