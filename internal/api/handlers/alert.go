package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/ThimethZ03/utility-billing-system2/internal/api/dto"
	"github.com/ThimethZ03/utility-billing-system2/internal/api/middleware"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/monitor"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/errors"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/utils"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type AlertHandler struct {
	monitor    monitor.Service
	settings   alert.SettingsService
	feed       alert.FeedRepository
	logs       notification.LogRepository
	dispatcher notification.Dispatcher
	dedup      alert.Deduplicator
	logger     *logger.Logger
	validator  *validator.Validator
}

func NewAlertHandler(
	mon monitor.Service,
	settings alert.SettingsService,
	feed alert.FeedRepository,
	logs notification.LogRepository,
	dispatcher notification.Dispatcher,
	dedup alert.Deduplicator,
	log *logger.Logger,
	val *validator.Validator,
) *AlertHandler {
	return &AlertHandler{
		monitor:    mon,
		settings:   settings,
		feed:       feed,
		logs:       logs,
		dispatcher: dispatcher,
		dedup:      dedup,
		logger:     log,
		validator:  val,
	}
}

// Check runs a threshold check for the caller
// @Summary Run threshold check
// @Description Evaluate this month's totals and the forecast against the user's limits and notify
// @Tags Alerts
// @Produce json
// @Param branch query string false "Branch ID; whole account when empty"
// @Success 200 {object} utils.Envelope{data=monitor.CheckResult} "Check result"
// @Failure 502 {object} utils.Envelope "Bill store unavailable"
// @Security BearerAuth
// @Router /alerts/check [get]
func (h *AlertHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	result, err := h.monitor.Check(r.Context(), scopeFromRequest(r, userID))
	if err != nil {
		writeServiceError(w, err, "Failed to check alerts")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, result)
}

// GetSettings returns the caller's alert settings
// @Summary Get alert settings
// @Description Get alert limits and channels, created with defaults on first access
// @Tags Alerts
// @Produce json
// @Success 200 {object} utils.Envelope{data=dto.AlertSettingsDTO} "Alert settings"
// @Failure 500 {object} utils.Envelope "Internal server error"
// @Security BearerAuth
// @Router /alerts/settings [get]
func (h *AlertHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	s, err := h.settings.Get(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err, "Failed to fetch alert settings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SettingsToDTO(s))
}

// UpdateSettings applies a partial settings update
// @Summary Update alert settings
// @Description Update limits, recipients or channel switches
// @Tags Alerts
// @Accept json
// @Produce json
// @Param request body dto.UpdateAlertSettingsRequest true "Fields to change"
// @Success 200 {object} utils.Envelope{data=dto.AlertSettingsDTO} "Updated settings"
// @Failure 400 {object} utils.Envelope "Invalid request"
// @Security BearerAuth
// @Router /alerts/settings [put]
func (h *AlertHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)

	var req dto.UpdateAlertSettingsRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	s, err := h.settings.Update(r.Context(), userID, req.ToUpdate())
	if err != nil {
		writeServiceError(w, err, "Failed to update alert settings")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.SettingsToDTO(s))
}

// ListFeed returns dashboard alerts with pagination and filtering
// @Summary List dashboard alerts
// @Description Get a paginated list of dashboard alerts, newest first
// @Tags Alerts
// @Produce json
// @Param branch query string false "Filter by branch"
// @Param type query string false "Filter by alert type (units, amount)"
// @Param status query string false "Filter by status (active, acknowledged)"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.AlertFeedDTO} "List of alerts"
// @Failure 500 {object} utils.Envelope "Internal server error"
// @Security BearerAuth
// @Router /alerts/feed [get]
func (h *AlertHandler) ListFeed(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	p := utils.ParsePaginationParams(r)

	filter := alert.FeedFilter{
		BranchID: r.URL.Query().Get("branch"),
		Kind:     r.URL.Query().Get("type"),
		Status:   r.URL.Query().Get("status"),
	}

	items, total, err := h.feed.List(r.Context(), userID, filter, p.PageSize, p.Offset)
	if err != nil {
		writeServiceError(w, err, "Failed to list alerts")
		return
	}

	dtos := make([]dto.AlertFeedDTO, len(items))
	for i, item := range items {
		dtos[i] = dto.FeedItemToDTO(item)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}

// Acknowledge marks a dashboard alert as seen
// @Summary Acknowledge alert
// @Description Acknowledge a dashboard alert; it stays acknowledged until its severity changes
// @Tags Alerts
// @Produce json
// @Param id path int true "Alert ID"
// @Success 200 {object} utils.Envelope "Alert acknowledged"
// @Failure 400 {object} utils.Envelope "Invalid ID"
// @Failure 404 {object} utils.Envelope "Alert not found"
// @Security BearerAuth
// @Router /alerts/feed/{id}/ack [post]
func (h *AlertHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		utils.WriteError(w, errors.BadRequest("Invalid alert ID"))
		return
	}

	if err := h.feed.Acknowledge(r.Context(), userID, id); err != nil {
		writeServiceError(w, err, "Failed to acknowledge alert")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Alert acknowledged", nil)
}

// SendTestEmail sends a test email to one address
// @Summary Send test email
// @Description Verify the email transport by sending a test alert
// @Tags Alerts
// @Accept json
// @Produce json
// @Param request body dto.TestEmailRequest true "Recipient"
// @Success 200 {object} utils.Envelope "Test email sent"
// @Failure 400 {object} utils.Envelope "Invalid request"
// @Failure 502 {object} utils.Envelope "Delivery failed"
// @Failure 503 {object} utils.Envelope "Email transport not configured"
// @Security BearerAuth
// @Router /alerts/test-email [post]
func (h *AlertHandler) SendTestEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.TestEmailRequest
	if !decodeAndValidate(w, r, h.validator, &req) {
		return
	}

	if err := h.dispatcher.SendTest(r.Context(), req.Email); err != nil {
		if stderrors.Is(err, notification.ErrTransportNotConfigured) {
			utils.WriteError(w, errors.ServiceUnavailable("Email transport not configured"))
			return
		}
		h.logger.ErrorWithErr(err, "Test email failed")
		utils.WriteError(w, errors.NotificationError(err))
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Test email sent", map[string]string{"email": req.Email})
}

// ResetCooldowns clears email cooldowns for the caller
// @Summary Reset alert cooldowns
// @Description Allow the next breach to email again immediately
// @Tags Alerts
// @Produce json
// @Param branch query string false "Branch ID; whole account when empty"
// @Param type query string false "Alert type (units, amount); all when empty"
// @Success 200 {object} utils.Envelope "Cooldowns reset"
// @Failure 400 {object} utils.Envelope "Invalid alert type"
// @Security BearerAuth
// @Router /alerts/cooldowns [delete]
func (h *AlertHandler) ResetCooldowns(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	scope := scopeFromRequest(r, userID)

	var kinds []alert.Kind
	if raw := r.URL.Query().Get("type"); raw != "" {
		kind := alert.Kind(raw)
		if !kind.IsValid() {
			utils.WriteError(w, errors.BadRequest("Invalid alert type"))
			return
		}
		kinds = append(kinds, kind)
	}

	if err := h.dedup.Reset(r.Context(), scope, kinds...); err != nil {
		writeServiceError(w, err, "Failed to reset cooldowns")
		return
	}

	utils.WriteSuccessWithMessage(w, http.StatusOK, "Cooldowns reset", nil)
}

// ListNotifications returns the delivery log
// @Summary List notification deliveries
// @Description Get a paginated list of email and dashboard delivery attempts
// @Tags Alerts
// @Produce json
// @Param channel query string false "Filter by channel (email, dashboard)"
// @Param status query string false "Filter by status (sent, failed, suppressed)"
// @Param page query int false "Page number (default: 1)"
// @Param page_size query int false "Page size (default: 20, max: 100)"
// @Success 200 {object} utils.PaginatedResponse{data=[]dto.NotificationLogDTO} "Delivery log"
// @Failure 500 {object} utils.Envelope "Internal server error"
// @Security BearerAuth
// @Router /alerts/notifications [get]
func (h *AlertHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	userID, _ := middleware.GetUserID(r)
	p := utils.ParsePaginationParams(r)

	filter := notification.LogFilter{
		Channel: notification.Channel(r.URL.Query().Get("channel")),
		Status:  notification.DeliveryStatus(r.URL.Query().Get("status")),
	}

	logs, total, err := h.logs.List(r.Context(), userID, filter, p.PageSize, p.Offset)
	if err != nil {
		writeServiceError(w, err, "Failed to list notifications")
		return
	}

	dtos := make([]dto.NotificationLogDTO, len(logs))
	for i, l := range logs {
		dtos[i] = dto.LogToDTO(l)
	}

	utils.WriteSuccess(w, http.StatusOK, utils.NewPaginatedResponse(dtos, p.Page, p.PageSize, total))
}
