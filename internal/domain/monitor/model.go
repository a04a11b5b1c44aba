package monitor

import (
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
)

// Delivery pairs an alert with its dispatch outcome
type Delivery struct {
	Kind   alert.Kind                  `json:"type"`
	Result notification.DispatchResult `json:"result"`
}

// CheckResult is the outcome of one evaluation cycle
type CheckResult struct {
	Scope           usage.Scope        `json:"scope"`
	Period          string             `json:"period"`
	Alerts          []alert.Event      `json:"alerts"`
	ProjectedAlerts []alert.Event      `json:"projectedAlerts"`
	TotalUnits      float64            `json:"totalUnits"`
	TotalAmount     float64            `json:"totalAmount"`
	EmailsSent      int                `json:"emailsSent"`
	Forecast        *forecast.Forecast `json:"forecast"`
	Series          usage.Series       `json:"series"`
	Deliveries      []Delivery         `json:"deliveries"`
}

// ForecastResult is a forecast together with the series it was fitted on
type ForecastResult struct {
	Scope    usage.Scope        `json:"scope"`
	Series   usage.Series       `json:"series"`
	Forecast *forecast.Forecast `json:"forecast"`
	Status   string             `json:"status"`
}

// Forecast status values
const (
	StatusOK               = "ok"
	StatusInsufficientData = "insufficient_data"
)
