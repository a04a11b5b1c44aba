package forecast

import "errors"

// Trend is the direction of the fitted line
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// Confidence grades a forecast by sample size
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

const (
	// MinPoints is the shortest series that can be forecast
	MinPoints = 2

	// TrendBand is the slope, in units per period, a trend must exceed
	TrendBand = 5.0

	// AnomalyDeviations is how many population standard deviations the last
	// point may sit from the mean before it is flagged
	AnomalyDeviations = 1.5

	// HighConfidencePoints and MediumConfidencePoints are the sample size cut-offs
	HighConfidencePoints   = 6
	MediumConfidencePoints = 3
)

// ErrInsufficientData is reported when a series is too short to forecast
var ErrInsufficientData = errors.New("insufficient data: at least 2 periods are required")

// Forecast is the next-period prediction for a series
type Forecast struct {
	PredictedUnits    float64    `json:"predictedUnits"`
	PredictedAmount   float64    `json:"predictedAmount"`
	GrowthRatePercent float64    `json:"growthRate"`
	Trend             Trend      `json:"trend"`
	Confidence        Confidence `json:"confidence"`
	AnomalyDetected   bool       `json:"anomalyDetected"`
	AvgCostPerUnit    float64    `json:"avgCostPerUnit"`

	Slope      float64 `json:"slope"`
	Intercept  float64 `json:"intercept"`
	ModelScore float64 `json:"modelScore"`
	DataPoints int     `json:"dataPoints"`
}

// Analysis summarises a series without predicting
type Analysis struct {
	Periods           int     `json:"periods"`
	TotalUnits        float64 `json:"totalUnits"`
	TotalAmount       float64 `json:"totalAmount"`
	AverageUnits      float64 `json:"averageUnits"`
	AverageAmount     float64 `json:"averageAmount"`
	MinUnits          float64 `json:"minUnits"`
	MaxUnits          float64 `json:"maxUnits"`
	StdDeviation      float64 `json:"stdDeviation"`
	AvgCostPerUnit    float64 `json:"avgCostPerUnit"`
	GrowthRatePercent float64 `json:"growthRate"`
	AnomalyDetected   bool    `json:"anomalyDetected"`
	Trend             Trend   `json:"trend,omitempty"`
}

// BatchResult holds per-key forecasts; keys that could not be forecast are
// listed in Errors instead.
type BatchResult struct {
	Predictions map[string]*Forecast `json:"predictions"`
	Errors      map[string]string    `json:"errors,omitempty"`
}
