package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/validator"
	"github.com/ThimethZ03/utility-billing-system2/internal/repository/memory"
	"github.com/ThimethZ03/utility-billing-system2/internal/services"
	"github.com/ThimethZ03/utility-billing-system2/internal/testutil"
	"github.com/go-chi/chi/v5"
)

var handlerNow = time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

type alertFixture struct {
	handler  *AlertHandler
	settings *testutil.MockSettingsRepository
	feed     *testutil.MockFeedRepository
	logs     *testutil.MockLogRepository
	sender   *testutil.MockEmailSender
	cooldown *memory.CooldownStore
}

func newAlertFixture(t *testing.T, bills ...*usage.BillRecord) *alertFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	clock := func() time.Time { return handlerNow }

	settingsRepo := testutil.NewMockSettingsRepository()
	feed := testutil.NewMockFeedRepository()
	logs := testutil.NewMockLogRepository()
	sender := testutil.NewMockEmailSender()
	cooldown := memory.NewCooldownStore()

	settings := services.NewSettingsService(settingsRepo, log)
	dedup := services.NewAlertDeduplicator(cooldown, 24*time.Hour, log)
	dispatcher := services.NewNotificationDispatcher(sender, testutil.MockComposer{}, dedup, feed,
		services.DefaultDispatcherConfig(), log, services.WithClock(clock), services.WithDeliveryLog(logs))
	mon := services.NewMonitorService(
		testutil.NewMockBillRepository(bills...),
		settings,
		services.NewTimeSeriesAggregator(6, time.UTC, log),
		services.NewForecastEngine(),
		services.NewThresholdEvaluator(),
		dispatcher,
		services.MonitorConfig{FetchTimeout: time.Second},
		log,
	)
	mon.SetClock(clock)

	return &alertFixture{
		handler:  NewAlertHandler(mon, settings, feed, logs, dispatcher, dedup, log, validator.New()),
		settings: settingsRepo,
		feed:     feed,
		logs:     logs,
		sender:   sender,
		cooldown: cooldown,
	}
}

func TestAlertHandler_Check(t *testing.T) {
	f := newAlertFixture(t, testutil.MonthlyBills(1, 2026, time.January, 45, 500, 520, 1600)...)
	f.settings.Settings[1] = &alert.Settings{UserID: 1, Limits: alert.Limits{
		MaxMonthlyUnits:        1500,
		MaxMonthlyAmount:       80000,
		EmailRecipients:        []string{"ops@example.com"},
		EmailAlertsEnabled:     true,
		DashboardAlertsEnabled: true,
	}}

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/alerts/check", nil), 1)
	rr := httptest.NewRecorder()

	f.handler.Check(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("handler returned wrong status code: got %v (%s)", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	var result struct {
		Alerts []struct {
			Type       string `json:"type"`
			Percentage int    `json:"percentage"`
		} `json:"alerts"`
		TotalUnits float64 `json:"totalUnits"`
		EmailsSent int     `json:"emailsSent"`
	}
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.TotalUnits != 1600 || len(result.Alerts) != 1 || result.Alerts[0].Type != "units" {
		t.Errorf("unexpected result %+v", result)
	}
	if result.Alerts[0].Percentage != 107 {
		t.Errorf("percentage = %d, want 107", result.Alerts[0].Percentage)
	}
	if result.EmailsSent != 1 {
		t.Errorf("emailsSent = %d, want 1", result.EmailsSent)
	}
}

func TestAlertHandler_Settings(t *testing.T) {
	f := newAlertFixture(t)

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/alerts/settings", nil), 7)
	rr := httptest.NewRecorder()
	f.handler.GetSettings(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("GetSettings returned %v", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	var got struct {
		MaxMonthlyAmount float64  `json:"maxMonthlyAmount"`
		MaxMonthlyUnits  float64  `json:"maxMonthlyUnits"`
		AlertEmails      []string `json:"alertEmails"`
		EnablePushAlerts bool     `json:"enablePushAlerts"`
	}
	if err := json.Unmarshal(env.Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.MaxMonthlyAmount != 80000 || got.MaxMonthlyUnits != 1500 || !got.EnablePushAlerts || got.AlertEmails == nil {
		t.Errorf("unexpected defaults %+v", got)
	}

	tests := []struct {
		name           string
		body           string
		expectedStatus int
	}{
		{"update limits", `{"maxMonthlyUnits":1200,"alertEmails":["a@example.com","A@example.com"],"enableEmailAlerts":true}`, http.StatusOK},
		{"negative amount", `{"maxMonthlyAmount":-5}`, http.StatusBadRequest},
		{"invalid email", `{"alertEmails":["not-an-email"]}`, http.StatusBadRequest},
		{"malformed body", `[`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodPut, "/api/v1/alerts/settings", bytes.NewBufferString(tt.body)), 7)
			rr := httptest.NewRecorder()

			f.handler.UpdateSettings(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v (%s)", rr.Code, tt.expectedStatus, rr.Body.String())
			}
		})
	}

	stored := f.settings.Settings[7]
	if stored == nil || stored.Limits.MaxMonthlyUnits != 1200 || !stored.Limits.EmailAlertsEnabled {
		t.Fatalf("stored settings = %+v", stored)
	}
	if len(stored.Limits.EmailRecipients) != 1 {
		t.Errorf("recipients = %v, want one after de-duplication", stored.Limits.EmailRecipients)
	}
}

func TestAlertHandler_FeedAndAcknowledge(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	for _, kind := range []alert.Kind{alert.KindUnits, alert.KindAmount} {
		f.feed.Upsert(ctx, &alert.FeedItem{UserID: 1, Kind: kind, Period: "2026-03", Status: alert.StatusActive})
	}
	f.feed.Upsert(ctx, &alert.FeedItem{UserID: 2, Kind: alert.KindUnits, Period: "2026-03", Status: alert.StatusActive})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/alerts/feed?page=1&page_size=1", nil), 1)
	rr := httptest.NewRecorder()
	f.handler.ListFeed(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListFeed returned %v", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	var page struct {
		Data       []map[string]interface{} `json:"data"`
		TotalItems int64                    `json:"total_items"`
		TotalPages int                      `json:"total_pages"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(page.Data) != 1 || page.TotalItems != 2 || page.TotalPages != 2 {
		t.Errorf("unexpected page %+v", page)
	}

	tests := []struct {
		name           string
		userID         int64
		id             string
		expectedStatus int
	}{
		{"own alert", 1, "1", http.StatusOK},
		{"other user's alert", 1, "3", http.StatusNotFound},
		{"missing alert", 1, "99", http.StatusNotFound},
		{"bad id", 1, "abc", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/alerts/feed/"+tt.id+"/ack", nil), tt.userID)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			rr := httptest.NewRecorder()

			f.handler.Acknowledge(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
		})
	}

	if f.feed.Items[1].Status != alert.StatusAcknowledged {
		t.Errorf("item 1 status = %s", f.feed.Items[1].Status)
	}
}

func TestAlertHandler_SendTestEmail(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		failWith       error
		expectedStatus int
	}{
		{"sent", `{"email":"ops@example.com"}`, nil, http.StatusOK},
		{"invalid address", `{"email":"ops"}`, nil, http.StatusBadRequest},
		{"transport down", `{"email":"ops@example.com"}`, errors.New("connection refused"), http.StatusBadGateway},
		{"transport missing", `{"email":"ops@example.com"}`, notification.ErrTransportNotConfigured, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newAlertFixture(t)
			if tt.failWith != nil {
				f.sender.Fail["ops@example.com"] = tt.failWith
			}
			req := withUser(httptest.NewRequest(http.MethodPost, "/api/v1/alerts/test-email", bytes.NewBufferString(tt.body)), 1)
			rr := httptest.NewRecorder()

			f.handler.SendTestEmail(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("handler returned wrong status code: got %v want %v", rr.Code, tt.expectedStatus)
			}
			if tt.expectedStatus == http.StatusOK && len(f.sender.SentTo()) != 1 {
				t.Errorf("sent to %v", f.sender.SentTo())
			}
		})
	}
}

func TestAlertHandler_ResetCooldowns(t *testing.T) {
	f := newAlertFixture(t)
	scope := usage.Scope{UserID: 1}
	ctx := context.Background()
	for _, kind := range alert.Kinds {
		f.cooldown.Record(ctx, services.CooldownKey(scope, kind), handlerNow)
	}

	req := withUser(httptest.NewRequest(http.MethodDelete, "/api/v1/alerts/cooldowns?type=units", nil), 1)
	rr := httptest.NewRecorder()
	f.handler.ResetCooldowns(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ResetCooldowns returned %v", rr.Code)
	}
	if _, ok := f.cooldown.LastSent(services.CooldownKey(scope, alert.KindUnits)); ok {
		t.Error("units cooldown should be cleared")
	}
	if _, ok := f.cooldown.LastSent(services.CooldownKey(scope, alert.KindAmount)); !ok {
		t.Error("amount cooldown should remain")
	}

	req = withUser(httptest.NewRequest(http.MethodDelete, "/api/v1/alerts/cooldowns?type=water", nil), 1)
	rr = httptest.NewRecorder()
	f.handler.ResetCooldowns(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("unknown type returned %v, want 400", rr.Code)
	}
}

func TestAlertHandler_ListNotifications(t *testing.T) {
	f := newAlertFixture(t)
	ctx := context.Background()
	f.logs.Create(ctx, &notification.Log{ID: "a", UserID: 1, Channel: notification.ChannelEmail, Status: notification.StatusSent})
	f.logs.Create(ctx, &notification.Log{ID: "b", UserID: 1, Channel: notification.ChannelEmail, Status: notification.StatusFailed})
	f.logs.Create(ctx, &notification.Log{ID: "c", UserID: 2, Channel: notification.ChannelDashboard, Status: notification.StatusSent})

	req := withUser(httptest.NewRequest(http.MethodGet, "/api/v1/alerts/notifications?status=failed", nil), 1)
	rr := httptest.NewRecorder()
	f.handler.ListNotifications(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("ListNotifications returned %v", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	var page struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
		TotalItems int64 `json:"total_items"`
	}
	if err := json.Unmarshal(env.Data, &page); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.TotalItems != 1 || len(page.Data) != 1 || page.Data[0].ID != "b" {
		t.Errorf("unexpected page %+v", page)
	}
}
