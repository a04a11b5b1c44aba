package client

import "time"

// SeriesPoint is one month of usage
type SeriesPoint struct {
	Month  string  `json:"month,omitempty"` // YYYY-MM
	Units  float64 `json:"units"`
	Amount float64 `json:"amount"`
}

// Forecast is the next-month prediction for a series
type Forecast struct {
	PredictedUnits    float64 `json:"predictedUnits"`
	PredictedAmount   float64 `json:"predictedAmount"`
	GrowthRatePercent float64 `json:"growthRate"`
	Trend             string  `json:"trend"`      // increasing, decreasing, stable
	Confidence        string  `json:"confidence"` // low, medium, high
	AnomalyDetected   bool    `json:"anomalyDetected"`
	AvgCostPerUnit    float64 `json:"avgCostPerUnit"`
	Slope             float64 `json:"slope"`
	Intercept         float64 `json:"intercept"`
	ModelScore        float64 `json:"modelScore"`
	DataPoints        int     `json:"dataPoints"`
}

// BatchForecast holds per-branch forecasts and the branches that failed
type BatchForecast struct {
	Predictions map[string]*Forecast `json:"predictions"`
	Errors      map[string]string    `json:"errors,omitempty"`
}

// Analysis summarises a series
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
	Trend             string  `json:"trend,omitempty"`
}

// StoredForecast is a forecast computed from stored bills
type StoredForecast struct {
	Status   string        `json:"status"` // ok, insufficient_data
	Message  string        `json:"message,omitempty"`
	Branch   string        `json:"branch,omitempty"`
	Forecast *Forecast     `json:"forecast,omitempty"`
	Series   []SeriesPoint `json:"series,omitempty"`
}

// AlertEvent is a single threshold breach
type AlertEvent struct {
	Type       string  `json:"type"`     // units, amount
	Severity   string  `json:"severity"` // warning, danger
	Current    float64 `json:"current"`
	Limit      float64 `json:"limit"`
	Percentage int     `json:"percentage"`
	Message    string  `json:"message"`
	Projected  bool    `json:"projected,omitempty"`
	Period     string  `json:"period,omitempty"`
}

// RecipientError reports a failed email delivery
type RecipientError struct {
	Recipient string `json:"recipient"`
	Error     string `json:"error"`
}

// DispatchResult is the outcome of notifying one alert
type DispatchResult struct {
	Attempted          int              `json:"attempted"`
	Succeeded          int              `json:"succeeded"`
	Failed             int              `json:"failed"`
	PerRecipientErrors []RecipientError `json:"perRecipientErrors"`
	DashboardPublished bool             `json:"dashboardPublished"`
	Suppressed         bool             `json:"suppressed,omitempty"`
}

// Delivery pairs an alert type with its dispatch outcome
type Delivery struct {
	Type   string         `json:"type"`
	Result DispatchResult `json:"result"`
}

// CheckResult is the outcome of a threshold check
type CheckResult struct {
	Period          string       `json:"period"`
	Alerts          []AlertEvent `json:"alerts"`
	ProjectedAlerts []AlertEvent `json:"projectedAlerts"`
	TotalUnits      float64      `json:"totalUnits"`
	TotalAmount     float64      `json:"totalAmount"`
	EmailsSent      int          `json:"emailsSent"`
	Forecast        *Forecast    `json:"forecast"`
	Deliveries      []Delivery   `json:"deliveries"`
}

// AlertSettings are the user's limits and channel switches
type AlertSettings struct {
	MaxMonthlyAmount  float64   `json:"maxMonthlyAmount"`
	MaxMonthlyUnits   float64   `json:"maxMonthlyUnits"`
	AlertEmails       []string  `json:"alertEmails"`
	EnableEmailAlerts bool      `json:"enableEmailAlerts"`
	EnablePushAlerts  bool      `json:"enablePushAlerts"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// UpdateSettingsRequest changes only the non-nil fields
type UpdateSettingsRequest struct {
	MaxMonthlyAmount  *float64 `json:"maxMonthlyAmount,omitempty"`
	MaxMonthlyUnits   *float64 `json:"maxMonthlyUnits,omitempty"`
	AlertEmails       []string `json:"alertEmails,omitempty"`
	EnableEmailAlerts *bool    `json:"enableEmailAlerts,omitempty"`
	EnablePushAlerts  *bool    `json:"enablePushAlerts,omitempty"`
}

// FeedItem is a dashboard alert
type FeedItem struct {
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
	Status     string    `json:"status"` // active, acknowledged
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// NotificationLog is one delivery attempt
type NotificationLog struct {
	ID        string    `json:"id"`
	BranchID  string    `json:"branchId,omitempty"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient,omitempty"`
	AlertType string    `json:"alertType"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ListOptions contains common pagination options
type ListOptions struct {
	Page     int
	PageSize int
}

// Pagination is the paging metadata of a list response
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
}

// FeedPage is one page of dashboard alerts
type FeedPage struct {
	Data []FeedItem `json:"data"`
	Pagination
}

// NotificationPage is one page of the delivery log
type NotificationPage struct {
	Data []NotificationLog `json:"data"`
	Pagination
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

// ReadyResponse reports the state of the server's dependencies
type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cooldown string `json:"cooldown"` // memory, redis
}
