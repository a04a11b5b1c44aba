package services

import (
	"testing"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/alert"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/forecast"
	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
)

func TestThresholdEvaluator_Evaluate(t *testing.T) {
	evaluator := NewThresholdEvaluator()
	limits := alert.Limits{MaxMonthlyUnits: 1500, MaxMonthlyAmount: 80000}

	tests := []struct {
		name           string
		totals         usage.Totals
		limits         alert.Limits
		wantKinds      []alert.Kind
		wantSeverities []alert.Severity
		wantPercent    []int
	}{
		{
			name:           "units over limit",
			totals:         usage.Totals{Units: 1600, Amount: 70000},
			limits:         limits,
			wantKinds:      []alert.Kind{alert.KindUnits},
			wantSeverities: []alert.Severity{alert.SeverityWarning},
			wantPercent:    []int{107},
		},
		{
			name:           "amount over limit",
			totals:         usage.Totals{Units: 1000, Amount: 90000},
			limits:         limits,
			wantKinds:      []alert.Kind{alert.KindAmount},
			wantSeverities: []alert.Severity{alert.SeverityDanger},
			wantPercent:    []int{113},
		},
		{
			name:   "within limits",
			totals: usage.Totals{Units: 1000, Amount: 50000},
			limits: limits,
		},
		{
			name:   "exactly at limit",
			totals: usage.Totals{Units: 1500, Amount: 80000},
			limits: limits,
		},
		{
			name:           "both over limit, units first",
			totals:         usage.Totals{Units: 3000, Amount: 100000},
			limits:         limits,
			wantKinds:      []alert.Kind{alert.KindUnits, alert.KindAmount},
			wantSeverities: []alert.Severity{alert.SeverityWarning, alert.SeverityDanger},
			wantPercent:    []int{200, 125},
		},
		{
			name:           "zero limit reports sentinel",
			totals:         usage.Totals{Units: 10, Amount: 0},
			limits:         alert.Limits{MaxMonthlyUnits: 0, MaxMonthlyAmount: 80000},
			wantKinds:      []alert.Kind{alert.KindUnits},
			wantSeverities: []alert.Severity{alert.SeverityWarning},
			wantPercent:    []int{alert.ZeroLimitPercentage},
		},
		{
			name:   "no usage against zero limit",
			totals: usage.Totals{},
			limits: alert.Limits{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events := evaluator.Evaluate(tt.totals, tt.limits)

			if len(events) != len(tt.wantKinds) {
				t.Fatalf("Evaluate() returned %d events, want %d: %+v", len(events), len(tt.wantKinds), events)
			}
			for i, e := range events {
				if e.Kind != tt.wantKinds[i] {
					t.Errorf("event[%d].Kind = %s, want %s", i, e.Kind, tt.wantKinds[i])
				}
				if e.Severity != tt.wantSeverities[i] {
					t.Errorf("event[%d].Severity = %s, want %s", i, e.Severity, tt.wantSeverities[i])
				}
				if e.PercentageOfLimit != tt.wantPercent[i] {
					t.Errorf("event[%d].PercentageOfLimit = %d, want %d", i, e.PercentageOfLimit, tt.wantPercent[i])
				}
				if e.Projected {
					t.Errorf("event[%d].Projected = true", i)
				}
			}
		})
	}
}

func TestThresholdEvaluator_Messages(t *testing.T) {
	evaluator := NewThresholdEvaluator()
	limits := alert.Limits{MaxMonthlyUnits: 1500, MaxMonthlyAmount: 80000}

	events := evaluator.Evaluate(usage.Totals{Year: 2026, Month: 3, Units: 1600, Amount: 90000}, limits)
	if len(events) != 2 {
		t.Fatalf("Evaluate() returned %d events, want 2", len(events))
	}

	if want := "Monthly units (1600) exceeded limit (1500)"; events[0].Message != want {
		t.Errorf("units message = %q, want %q", events[0].Message, want)
	}
	if want := "Monthly amount (Rs. 90,000) exceeded limit (Rs. 80,000)"; events[1].Message != want {
		t.Errorf("amount message = %q, want %q", events[1].Message, want)
	}
	for _, e := range events {
		if e.Period != "2026-03" {
			t.Errorf("Period = %q, want 2026-03", e.Period)
		}
	}
}

func TestThresholdEvaluator_FormatAmount(t *testing.T) {
	evaluator := NewThresholdEvaluator()

	tests := []struct {
		v    float64
		want string
	}{
		{v: 80000, want: "80,000"},
		{v: 1234567, want: "1,234,567"},
		{v: 950, want: "950"},
		{v: 80000.5, want: "80,000.50"},
	}

	for _, tt := range tests {
		if got := evaluator.FormatAmount(tt.v); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestThresholdEvaluator_EvaluateForecast(t *testing.T) {
	evaluator := NewThresholdEvaluator()
	limits := alert.Limits{MaxMonthlyUnits: 1500, MaxMonthlyAmount: 80000}

	if got := evaluator.EvaluateForecast(nil, limits); len(got) != 0 {
		t.Errorf("EvaluateForecast(nil) = %+v, want empty", got)
	}

	f := &forecast.Forecast{PredictedUnits: 1600, PredictedAmount: 72000}
	events := evaluator.EvaluateForecast(f, limits)
	if len(events) != 1 {
		t.Fatalf("EvaluateForecast() returned %d events, want 1", len(events))
	}
	if !events[0].Projected {
		t.Error("Projected = false, want true")
	}
	if want := "Projected monthly units (1600) exceeded limit (1500)"; events[0].Message != want {
		t.Errorf("Message = %q, want %q", events[0].Message, want)
	}
}
