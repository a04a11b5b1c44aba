package services

import (
	"testing"
	"time"

	"github.com/ThimethZ03/utility-billing-system2/internal/domain/usage"
	"github.com/ThimethZ03/utility-billing-system2/internal/pkg/logger"
)

func newTestAggregator(window int) *TimeSeriesAggregator {
	log := logger.New(logger.Config{Level: "error", Format: "json"})
	return NewTimeSeriesAggregator(window, time.UTC, log)
}

func TestTimeSeriesAggregator_Aggregate(t *testing.T) {
	agg := newTestAggregator(6)

	tests := []struct {
		name       string
		records    []*usage.BillRecord
		wantUnits  []float64
		wantLabels []string
	}{
		{
			name:      "no records",
			records:   nil,
			wantUnits: []float64{},
		},
		{
			name: "sums bills of the same month and sorts ascending",
			records: []*usage.BillRecord{
				{ID: "3", Units: 300, Amount: 3000, PeriodStart: "2026-03-01"},
				{ID: "1", Units: 100, Amount: 1000, PeriodStart: "2026-01-15"},
				{ID: "2", Units: 50, Amount: 500, PeriodStart: "2026-01-20T08:00:00Z"},
			},
			wantUnits:  []float64{150, 300},
			wantLabels: []string{"2026-01", "2026-03"},
		},
		{
			name: "falls back to created and due dates",
			records: []*usage.BillRecord{
				{ID: "1", Units: 10, CreatedAt: "2025-11-02T10:00:00Z"},
				{ID: "2", Units: 20, DueDate: "2025-12-28"},
			},
			wantUnits:  []float64{10, 20},
			wantLabels: []string{"2025-11", "2025-12"},
		},
		{
			name: "malformed first date drops the record",
			records: []*usage.BillRecord{
				{ID: "1", Units: 10, PeriodStart: "not-a-date", CreatedAt: "2026-01-02"},
				{ID: "2", Units: 20, PeriodStart: "2026-02-02"},
				{ID: "3", Units: 30},
			},
			wantUnits:  []float64{20},
			wantLabels: []string{"2026-02"},
		},
		{
			name: "keeps the most recent window",
			records: []*usage.BillRecord{
				{Units: 1, PeriodStart: "2025-05-01"},
				{Units: 2, PeriodStart: "2025-06-01"},
				{Units: 3, PeriodStart: "2025-07-01"},
				{Units: 4, PeriodStart: "2025-08-01"},
				{Units: 5, PeriodStart: "2025-09-01"},
				{Units: 6, PeriodStart: "2025-10-01"},
				{Units: 7, PeriodStart: "2025-11-01"},
				{Units: 8, PeriodStart: "2025-12-01"},
			},
			wantUnits:  []float64{3, 4, 5, 6, 7, 8},
			wantLabels: []string{"2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			series := agg.Aggregate(tt.records)

			if len(series) != len(tt.wantUnits) {
				t.Fatalf("Aggregate() returned %d points, want %d", len(series), len(tt.wantUnits))
			}
			for i, p := range series {
				if p.PeriodIndex != i+1 {
					t.Errorf("point[%d].PeriodIndex = %d, want %d", i, p.PeriodIndex, i+1)
				}
				if p.Units != tt.wantUnits[i] {
					t.Errorf("point[%d].Units = %v, want %v", i, p.Units, tt.wantUnits[i])
				}
				if tt.wantLabels != nil && p.Label() != tt.wantLabels[i] {
					t.Errorf("point[%d].Label() = %s, want %s", i, p.Label(), tt.wantLabels[i])
				}
			}
		})
	}
}

func TestTimeSeriesAggregator_UsesLocation(t *testing.T) {
	colombo := time.FixedZone("UTC+5:30", 5*3600+1800)
	agg := NewTimeSeriesAggregator(6, colombo, logger.New(logger.Config{Level: "error", Format: "json"}))

	// 20:00 UTC on Jan 31 is already Feb 1 in UTC+5:30
	series := agg.Aggregate([]*usage.BillRecord{
		{Units: 10, CreatedAt: "2026-01-31T20:00:00Z"},
	})
	if len(series) != 1 || series[0].Label() != "2026-02" {
		t.Errorf("Aggregate() = %+v, want a single 2026-02 point", series)
	}
}

func TestTimeSeriesAggregator_AggregateByBranch(t *testing.T) {
	agg := newTestAggregator(6)

	records := []*usage.BillRecord{
		{BranchID: "colombo", Units: 100, PeriodStart: "2026-01-01"},
		{BranchID: "colombo", Units: 120, PeriodStart: "2026-02-01"},
		{BranchID: "kandy", Units: 40, PeriodStart: "2026-02-01"},
	}

	got := agg.AggregateByBranch(records)
	if len(got) != 2 {
		t.Fatalf("AggregateByBranch() returned %d branches, want 2", len(got))
	}
	if len(got["colombo"]) != 2 {
		t.Errorf("colombo series has %d points, want 2", len(got["colombo"]))
	}
	if len(got["kandy"]) != 1 || got["kandy"][0].Units != 40 {
		t.Errorf("kandy series = %+v", got["kandy"])
	}
}

func TestTimeSeriesAggregator_TotalsFor(t *testing.T) {
	agg := newTestAggregator(6)

	records := []*usage.BillRecord{
		{Units: 900, Amount: 40000, PeriodStart: "2026-03-01"},
		{Units: 700, Amount: 30000, PeriodStart: "2026-03-15"},
		{Units: 100, Amount: 4500, PeriodStart: "2026-02-15"},
		{Units: 999, Amount: 99999, PeriodStart: "garbage"},
	}

	got := agg.TotalsFor(records, 2026, time.March)
	if got.Units != 1600 || got.Amount != 70000 || got.Bills != 2 {
		t.Errorf("TotalsFor() = %+v, want 1600 units, 70000 amount, 2 bills", got)
	}
	if got.Period() != "2026-03" {
		t.Errorf("Period() = %s, want 2026-03", got.Period())
	}

	empty := agg.TotalsFor(records, 2025, time.January)
	if empty.Units != 0 || empty.Amount != 0 || empty.Bills != 0 {
		t.Errorf("TotalsFor() for empty month = %+v", empty)
	}
}
