package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/monitor"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/repository/memory"
	"github.com/ThimethZ03/utility-billing-system2/internal/testutil"
)

var monitorNow = time.Date(2026, 3, 20, 10, 0, 0, 0, time.UTC)

type monitorFixture struct {
	monitor  *MonitorService
	bills    *testutil.MockBillRepository
	settings *testutil.MockSettingsRepository
	feed     *testutil.MockFeedRepository
	sender   *testutil.MockEmailSender
}

func newMonitorFixture(t *testing.T, bills ...*usage.BillRecord) *monitorFixture {
	t.Helper()
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	clock := func() time.Time { return monitorNow }

	billRepo := testutil.NewMockBillRepository(bills...)
	settingsRepo := testutil.NewMockSettingsRepository()
	feed := testutil.NewMockFeedRepository()
	sender := testutil.NewMockEmailSender()

	dedup := NewAlertDeduplicator(memory.NewCooldownStore(), 24*time.Hour, log)
	dispatcher := NewNotificationDispatcher(sender, testutil.MockComposer{}, dedup, feed,
		DefaultDispatcherConfig(), log, WithClock(clock))

	m := NewMonitorService(
		billRepo,
		NewSettingsService(settingsRepo, log),
		NewTimeSeriesAggregator(6, time.UTC, log),
		NewForecastEngine(),
		NewThresholdEvaluator(),
		dispatcher,
		MonitorConfig{FetchTimeout: time.Second},
		log,
	)
	m.SetClock(clock)

	return &monitorFixture{monitor: m, bills: billRepo, settings: settingsRepo, feed: feed, sender: sender}
}

func (f *monitorFixture) saveLimits(userID int64, limits alert.Limits) {
	f.settings.Settings[userID] = &alert.Settings{UserID: userID, Limits: limits}
}

func TestMonitorService_Check(t *testing.T) {
	// Jan..Mar 2026: 500, 520, 510 units at 45 per unit
	f := newMonitorFixture(t, testutil.MonthlyBills(1, 2026, time.January, 45, 500, 520, 510)...)
	f.saveLimits(1, alert.Limits{
		MaxMonthlyUnits:        505,
		MaxMonthlyAmount:       80000,
		EmailRecipients:        []string{"ops@example.com"},
		EmailAlertsEnabled:     true,
		DashboardAlertsEnabled: true,
	})

	result, err := f.monitor.Check(context.Background(), usage.Scope{UserID: 1})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}

	if result.Period != "2026-03" || result.TotalUnits != 510 || result.TotalAmount != 22950 {
		t.Errorf("current period = %s %v %v", result.Period, result.TotalUnits, result.TotalAmount)
	}
	if len(result.Alerts) != 1 || result.Alerts[0].Kind != alert.KindUnits {
		t.Fatalf("Alerts = %+v, want one units alert", result.Alerts)
	}
	if result.EmailsSent != 1 {
		t.Errorf("EmailsSent = %d, want 1", result.EmailsSent)
	}
	if result.Forecast == nil || result.Forecast.PredictedUnits != 520 || result.Forecast.Trend != forecast.TrendStable {
		t.Errorf("Forecast = %+v", result.Forecast)
	}
	if len(result.ProjectedAlerts) != 1 || result.ProjectedAlerts[0].Period != "2026-04" {
		t.Errorf("ProjectedAlerts = %+v, want one for 2026-04", result.ProjectedAlerts)
	}
	if len(result.Series) != 3 {
		t.Errorf("Series has %d points, want 3", len(result.Series))
	}
	if f.feed.Count() != 2 {
		t.Errorf("feed items = %d, want current and projected", f.feed.Count())
	}

	again, err := f.monitor.Check(context.Background(), usage.Scope{UserID: 1})
	if err != nil {
		t.Fatalf("second Check() error = %v", err)
	}
	if again.EmailsSent != 0 {
		t.Errorf("second EmailsSent = %d, want 0 inside the cooldown", again.EmailsSent)
	}
	if len(f.sender.Sent) != 1 {
		t.Errorf("emails sent = %d, want 1", len(f.sender.Sent))
	}
	if f.feed.Count() != 2 {
		t.Errorf("feed items after refresh = %d, want 2", f.feed.Count())
	}
}

func TestMonitorService_CheckWithDefaults(t *testing.T) {
	f := newMonitorFixture(t, testutil.MonthlyBills(3, 2026, time.March, 60, 1600)...)

	result, err := f.monitor.Check(context.Background(), usage.Scope{UserID: 3})
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if len(result.Alerts) != 2 {
		t.Errorf("Alerts = %+v, want units and amount over default limits", result.Alerts)
	}
	if result.Forecast != nil || len(result.ProjectedAlerts) != 0 {
		t.Errorf("single month should not forecast: %+v", result.Forecast)
	}
	if result.EmailsSent != 0 {
		t.Errorf("EmailsSent = %d, default settings have email disabled", result.EmailsSent)
	}
	if len(f.settings.Settings) != 0 {
		t.Error("Check() should not create settings")
	}
}

func TestMonitorService_CheckFetchErrors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(b *testutil.MockBillRepository)
	}{
		{name: "store error", setup: func(b *testutil.MockBillRepository) { b.ListError = errors.New("connection reset") }},
		{name: "store timeout", setup: func(b *testutil.MockBillRepository) { b.Delay = 5 * time.Second }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newMonitorFixture(t)
			f.monitor.config.FetchTimeout = 20 * time.Millisecond
			tt.setup(f.bills)

			if _, err := f.monitor.Check(context.Background(), usage.Scope{UserID: 1}); err == nil {
				t.Error("Check() error = nil, want fetch failure")
			}
		})
	}
}

func TestMonitorService_Forecast(t *testing.T) {
	bills := testutil.MonthlyBills(1, 2026, time.January, 45, 500, 520, 510)
	bills = append(bills, &usage.BillRecord{ID: "solo", UserID: 2, Units: 10, PeriodStart: "2026-01-01"})
	f := newMonitorFixture(t, bills...)

	got, err := f.monitor.Forecast(context.Background(), usage.Scope{UserID: 1})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if got.Status != monitor.StatusOK || got.Forecast == nil {
		t.Errorf("Forecast() = %+v, want ok", got)
	}

	sparse, err := f.monitor.Forecast(context.Background(), usage.Scope{UserID: 2})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}
	if sparse.Status != monitor.StatusInsufficientData || sparse.Forecast != nil {
		t.Errorf("Forecast() = %+v, want insufficient data", sparse)
	}
}

func TestMonitorService_BranchForecasts(t *testing.T) {
	bills := []*usage.BillRecord{
		{UserID: 1, BranchID: "colombo", Units: 100, Amount: 4500, PeriodStart: "2026-01-01"},
		{UserID: 1, BranchID: "colombo", Units: 120, Amount: 5400, PeriodStart: "2026-02-01"},
		{UserID: 1, BranchID: "kandy", Units: 40, Amount: 1200, PeriodStart: "2026-02-01"},
	}
	f := newMonitorFixture(t, bills...)

	got, err := f.monitor.BranchForecasts(context.Background(), 1)
	if err != nil {
		t.Fatalf("BranchForecasts() error = %v", err)
	}
	if got.Predictions["colombo"] == nil {
		t.Error("colombo prediction missing")
	}
	if _, ok := got.Errors["kandy"]; !ok {
		t.Error("kandy should report insufficient data")
	}
}

func TestMonitorService_CheckAll(t *testing.T) {
	bills := append(
		testutil.MonthlyBills(1, 2026, time.February, 45, 1400, 1600),
		testutil.MonthlyBills(2, 2026, time.February, 50, 800, 2000)...,
	)
	f := newMonitorFixture(t, bills...)
	f.saveLimits(1, alert.DefaultLimits())
	f.saveLimits(2, alert.DefaultLimits())

	if err := f.monitor.CheckAll(context.Background()); err != nil {
		t.Fatalf("CheckAll() error = %v", err)
	}

	for _, userID := range []int64{1, 2} {
		items, _, _ := f.feed.List(context.Background(), userID, alert.FeedFilter{Status: alert.StatusActive}, 10, 0)
		if len(items) == 0 {
			t.Errorf("user %d has no dashboard alerts", userID)
		}
	}

	f.settings.GetError = errors.New("db down")
	if err := f.monitor.CheckAll(context.Background()); err == nil {
		t.Error("CheckAll() error = nil, want listing failure")
	}
}
