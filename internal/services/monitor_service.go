package services

import (
	"context"
	"fmt"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/monitor"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/notification"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/metrics"
)

// limitsSource supplies per-user limits
type limitsSource interface {
	Limits(ctx context.Context, userID int64) (alert.Limits, error)
	UserIDs(ctx context.Context) ([]int64, error)
}

// MonitorConfig configures evaluation cycles
type MonitorConfig struct {
	// FetchTimeout bounds the bill store call
	FetchTimeout time.Duration
	// Location decides which calendar month is current
	Location *time.Location
}

// MonitorService implements monitor.Service
type MonitorService struct {
	bills      usage.BillRepository
	settings   limitsSource
	aggregator usage.Aggregator
	engine     forecast.Engine
	evaluator  alert.Evaluator
	dispatcher notification.Dispatcher
	config     MonitorConfig
	now        func() time.Time
	logger     *logger.Logger
}

// NewMonitorService creates a monitor service
func NewMonitorService(
	bills usage.BillRepository,
	settings limitsSource,
	aggregator usage.Aggregator,
	engine forecast.Engine,
	evaluator alert.Evaluator,
	dispatcher notification.Dispatcher,
	config MonitorConfig,
	log *logger.Logger,
) *MonitorService {
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 10 * time.Second
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	return &MonitorService{
		bills:      bills,
		settings:   settings,
		aggregator: aggregator,
		engine:     engine,
		evaluator:  evaluator,
		dispatcher: dispatcher,
		config:     config,
		now:        time.Now,
		logger:     log,
	}
}

// SetClock replaces time.Now
func (m *MonitorService) SetClock(now func() time.Time) {
	m.now = now
}

// Check runs one evaluation cycle for scope
func (m *MonitorService) Check(ctx context.Context, scope usage.Scope) (*monitor.CheckResult, error) {
	start := time.Now()

	limits, err := m.settings.Limits(ctx, scope.UserID)
	if err != nil {
		m.logger.WithFields(map[string]interface{}{
			"user_id": scope.UserID,
		}).ErrorWithErr(err, "Failed to load alert settings, using defaults")
	}

	records, err := m.fetch(ctx, scope)
	if err != nil {
		metrics.RecordCheckCycle("error", time.Since(start))
		return nil, err
	}

	now := m.now().In(m.config.Location)
	series := m.aggregator.Aggregate(records)
	totals := m.aggregator.TotalsFor(records, now.Year(), now.Month())

	result := &monitor.CheckResult{
		Scope:           scope,
		Period:          totals.Period(),
		Alerts:          m.evaluator.Evaluate(totals, limits),
		ProjectedAlerts: []alert.Event{},
		TotalUnits:      totals.Units,
		TotalAmount:     totals.Amount,
		Series:          series,
		Deliveries:      []monitor.Delivery{},
	}

	if f := m.engine.Forecast(series); f != nil {
		metrics.RecordForecast(string(f.Trend), string(f.Confidence))
		result.Forecast = f
		next := nextPeriod(series)
		for _, e := range m.evaluator.EvaluateForecast(f, limits) {
			e.Period = next
			result.ProjectedAlerts = append(result.ProjectedAlerts, e)
		}
	}

	for _, e := range result.Alerts {
		metrics.RecordAlert(string(e.Kind), string(e.Severity), false)
		res := m.dispatcher.Dispatch(ctx, scope, e, limits)
		result.EmailsSent += res.Succeeded
		result.Deliveries = append(result.Deliveries, monitor.Delivery{Kind: e.Kind, Result: res})
	}
	for _, e := range result.ProjectedAlerts {
		metrics.RecordAlert(string(e.Kind), string(e.Severity), true)
		m.dispatcher.Dispatch(ctx, scope, e, limits)
	}

	metrics.RecordCheckCycle("ok", time.Since(start))

	m.logger.WithFields(map[string]interface{}{
		"scope":       scope.Key(),
		"period":      result.Period,
		"alerts":      len(result.Alerts),
		"projected":   len(result.ProjectedAlerts),
		"emails_sent": result.EmailsSent,
	}).Info("Threshold check completed")

	return result, nil
}

// Forecast returns the forecast for scope from stored bills
func (m *MonitorService) Forecast(ctx context.Context, scope usage.Scope) (*monitor.ForecastResult, error) {
	records, err := m.fetch(ctx, scope)
	if err != nil {
		return nil, err
	}

	series := m.aggregator.Aggregate(records)
	result := &monitor.ForecastResult{
		Scope:  scope,
		Series: series,
		Status: monitor.StatusInsufficientData,
	}
	if f := m.engine.Forecast(series); f != nil {
		metrics.RecordForecast(string(f.Trend), string(f.Confidence))
		result.Forecast = f
		result.Status = monitor.StatusOK
	}
	return result, nil
}

// BranchForecasts forecasts every branch of a user in one pass
func (m *MonitorService) BranchForecasts(ctx context.Context, userID int64) (forecast.BatchResult, error) {
	records, err := m.fetch(ctx, usage.Scope{UserID: userID})
	if err != nil {
		return forecast.BatchResult{}, err
	}
	return m.engine.ForecastBatch(m.aggregator.AggregateByBranch(records)), nil
}

// CheckAll checks the account scope of every user with saved settings.
// Failures for one user are logged and do not stop the others.
func (m *MonitorService) CheckAll(ctx context.Context) error {
	userIDs, err := m.settings.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	for _, id := range userIDs {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if _, err := m.Check(ctx, usage.Scope{UserID: id}); err != nil {
			m.logger.WithFields(map[string]interface{}{
				"user_id": id,
			}).ErrorWithErr(err, "Threshold check failed")
		}
	}
	return nil
}

func (m *MonitorService) fetch(ctx context.Context, scope usage.Scope) ([]*usage.BillRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, m.config.FetchTimeout)
	defer cancel()

	records, err := m.bills.ListByUser(ctx, scope.UserID, usage.Filter{BranchID: scope.BranchID})
	if err != nil {
		m.logger.WithFields(map[string]interface{}{
			"scope": scope.Key(),
		}).ErrorWithErr(err, "Failed to fetch bills")
		return nil, fmt.Errorf("fetch bills: %w", err)
	}
	return records, nil
}

// nextPeriod labels the month after the last point of series
func nextPeriod(series usage.Series) string {
	if len(series) == 0 {
		return ""
	}
	last := series[len(series)-1]
	if last.Year == 0 {
		return ""
	}
	return time.Date(last.Year, last.Month+1, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
