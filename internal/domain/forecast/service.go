package forecast

import "github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"

// Engine fits a trend to a monthly series
type Engine interface {
	// Forecast returns nil when the series has fewer than MinPoints points
	Forecast(series usage.Series) *Forecast

	// Analyze returns nil for an empty series
	Analyze(series usage.Series) *Analysis

	// ForecastBatch forecasts each series independently
	ForecastBatch(series map[string]usage.Series) BatchResult
}
