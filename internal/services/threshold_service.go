package services

import (
	"fmt"
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
)

// ThresholdEvaluator implements alert.Evaluator. It keeps no memory of
// earlier evaluations.
type ThresholdEvaluator struct {
	printer *message.Printer
}

// NewThresholdEvaluator creates an evaluator that groups amounts in thousands
func NewThresholdEvaluator() *ThresholdEvaluator {
	return &ThresholdEvaluator{printer: message.NewPrinter(language.English)}
}

// Evaluate checks units and amount independently
func (e *ThresholdEvaluator) Evaluate(totals usage.Totals, limits alert.Limits) []alert.Event {
	events := make([]alert.Event, 0, 2)
	period := ""
	if totals.Year != 0 {
		period = totals.Period()
	}

	if totals.Units > limits.MaxMonthlyUnits {
		events = append(events, alert.Event{
			Kind:              alert.KindUnits,
			Severity:          alert.SeverityWarning,
			Current:           totals.Units,
			Limit:             limits.MaxMonthlyUnits,
			PercentageOfLimit: percentageOf(totals.Units, limits.MaxMonthlyUnits),
			Message:           e.unitsMessage(totals.Units, limits.MaxMonthlyUnits),
			Period:            period,
		})
	}

	if totals.Amount > limits.MaxMonthlyAmount {
		events = append(events, alert.Event{
			Kind:              alert.KindAmount,
			Severity:          alert.SeverityDanger,
			Current:           totals.Amount,
			Limit:             limits.MaxMonthlyAmount,
			PercentageOfLimit: percentageOf(totals.Amount, limits.MaxMonthlyAmount),
			Message:           e.amountMessage(totals.Amount, limits.MaxMonthlyAmount),
			Period:            period,
		})
	}

	return events
}

// EvaluateForecast checks the predicted units and amount. The resulting
// events are marked projected.
func (e *ThresholdEvaluator) EvaluateForecast(f *forecast.Forecast, limits alert.Limits) []alert.Event {
	if f == nil {
		return []alert.Event{}
	}
	events := e.Evaluate(usage.Totals{Units: f.PredictedUnits, Amount: f.PredictedAmount}, limits)
	for i := range events {
		events[i].Projected = true
		events[i].Message = "Projected " + lowerFirst(events[i].Message)
	}
	return events
}

func (e *ThresholdEvaluator) unitsMessage(current, limit float64) string {
	return fmt.Sprintf("Monthly units (%s) exceeded limit (%s)", formatPlain(current), formatPlain(limit))
}

func (e *ThresholdEvaluator) amountMessage(current, limit float64) string {
	return fmt.Sprintf("Monthly amount (Rs. %s) exceeded limit (Rs. %s)", e.formatGrouped(current), e.formatGrouped(limit))
}

// FormatAmount renders an amount with thousands grouping
func (e *ThresholdEvaluator) FormatAmount(v float64) string {
	return e.formatGrouped(v)
}

func (e *ThresholdEvaluator) formatGrouped(v float64) string {
	if v == math.Trunc(v) {
		return e.printer.Sprintf("%d", int64(v))
	}
	return e.printer.Sprintf("%.2f", v)
}

// percentageOf rounds current/limit to a whole percent. A zero limit is
// always exceeded and reports ZeroLimitPercentage.
func percentageOf(current, limit float64) int {
	if limit <= 0 {
		return alert.ZeroLimitPercentage
	}
	return int(math.Round(current / limit * 100))
}

func formatPlain(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'A' && b[0] <= 'Z' {
		b[0] += 'a' - 'A'
	}
	return string(b)
}
