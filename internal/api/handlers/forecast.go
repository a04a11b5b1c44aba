package handlers

import (
	"net/http"

	"github.com/ThimethZ03/utility-billing-system2/internal/api/dto"
	"github.com/ThimethZ03/utility-billing-system2/internal/api/middleware"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/monitor"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/metrics"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/utils"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/validator"
)

type ForecastHandler struct {
	engine    forecast.Engine
	monitor   monitor.Service
	logger    *logger.Logger
	validator *validator.Validator
}

func NewForecastHandler(engine forecast.Engine, mon monitor.Service, log *logger.Logger, val *validator.Validator) *ForecastHandler {
	return &ForecastHandler{engine: engine, monitor: mon, logger: log, validator: val}
}

// Predict forecasts the next month of a submitted series
// @Summary Forecast next month
// @Description Fit a trend to a monthly series and predict the next period
// @Tags Forecast
// @Accept json
// @Produce json
// @Param request body dto.ForecastRequest true "Monthly series"
// @Success 200 {object} utils.Envelope{data=forecast.Forecast} "Forecast"
// @Failure 400 {object} utils.Envelope "Invalid request"
// @Failure 422 {object} utils.Envelope "Insufficient data"
// @Security BearerAuth
// @Router /forecast [post]
func (h *ForecastHandler) Predict(w http.ResponseWriter, r *http.Request) {
	var req dto.ForecastRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	f := h.engine.Forecast(dto.ToSeries(req.Data))
	if f == nil {
		utils.WriteError(w, errors.InsufficientData(len(req.Data), forecast.MinPoints))
		return
	}
	metrics.RecordForecast(string(f.Trend), string(f.Confidence))

	utils.WriteSuccess(w, http.StatusOK, f)
}

// PredictBatch forecasts one series per branch
// @Summary Batch forecast
// @Description Forecast several branch series independently
// @Tags Forecast
// @Accept json
// @Produce json
// @Param request body dto.BatchForecastRequest true "Series per branch"
// @Success 200 {object} utils.Envelope{data=forecast.BatchResult} "Predictions and per-branch errors"
// @Failure 400 {object} utils.Envelope "Invalid request"
// @Security BearerAuth
// @Router /forecast/batch [post]
func (h *ForecastHandler) PredictBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchForecastRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	batch := make(map[string]usage.Series, len(req.Branches))
	for branch, points := range req.Branches {
		batch[branch] = dto.ToSeries(points)
	}

	utils.WriteSuccess(w, http.StatusOK, h.engine.ForecastBatch(batch))
}

// Analyze summarises a submitted series
// @Summary Analyze usage
// @Description Totals, averages, spread, growth and anomaly flag of a series
// @Tags Forecast
// @Accept json
// @Produce json
// @Param request body dto.ForecastRequest true "Monthly series"
// @Success 200 {object} utils.Envelope{data=forecast.Analysis} "Analysis"
// @Failure 400 {object} utils.Envelope "Invalid request"
// @Failure 422 {object} utils.Envelope "Empty series"
// @Security BearerAuth
// @Router /forecast/analyze [post]
func (h *ForecastHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req dto.ForecastRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	a := h.engine.Analyze(dto.ToSeries(req.Data))
	if a == nil {
		utils.WriteError(w, errors.InsufficientData(0, 1))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, a)
}

// Get forecasts the caller's stored bills
// @Summary Forecast from stored bills
// @Description Aggregate the user's bills and forecast the next month
// @Tags Forecast
// @Produce json
// @Param branch query string false "Branch ID; whole account when empty"
// @Success 200 {object} utils.Envelope{data=dto.ForecastResponse} "Forecast or insufficient_data status"
// @Failure 502 {object} utils.Envelope "Bill store unavailable"
// @Security BearerAuth
// @Router /forecast [get]
func (h *ForecastHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	scope := scopeFromRequest(r, userID)

	result, err := h.monitor.Forecast(r.Context(), scope)
	if err != nil {
		writeServiceError(w, err, "Failed to forecast usage")
		return
	}

	resp := dto.ForecastResponse{
		Status:   result.Status,
		Branch:   scope.BranchID,
		Forecast: result.Forecast,
		Series:   dto.FromSeries(result.Series),
	}
	if result.Status == monitor.StatusInsufficientData {
		resp.Message = forecast.ErrInsufficientData.Error()
	}

	utils.WriteSuccess(w, http.StatusOK, resp)
}

// Branches forecasts every branch of the caller
// @Summary Forecast each branch
// @Description Forecast every branch from stored bills
// @Tags Forecast
// @Produce json
// @Success 200 {object} utils.Envelope{data=forecast.BatchResult} "Predictions and per-branch errors"
// @Failure 502 {object} utils.Envelope "Bill store unavailable"
// @Security BearerAuth
// @Router /forecast/branches [get]
func (h *ForecastHandler) Branches(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	result, err := h.monitor.BranchForecasts(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to forecast branches")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, result)
}
